// Package handlers is the command-line front end of the board. Each command
// calls the service, then re-reads and prints the affected view.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"board/internal/auth"
	"board/internal/models"
	"board/internal/seed"
	"board/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ErrUsage marks bad command lines.
var ErrUsage = errors.New("usage")

// Command runs one CLI command with its remaining arguments.
type Command func(ctx context.Context, args []string) error

// Seeder fills the board with demo content.
type Seeder interface {
	Run(ctx context.Context, opts seed.Options) (seed.Result, error)
}

type Handler struct {
	svc      *service.BoardService
	sessions *auth.Manager
	seeder   Seeder
	gatherer prometheus.Gatherer
	out      io.Writer

	// JSON switches output to JSON documents.
	JSON bool
	// Reveal shows Nsfw/Spoiler content instead of masking it.
	Reveal bool
}

func New(svc *service.BoardService, sessions *auth.Manager, seeder Seeder, out io.Writer) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		seeder:   seeder,
		gatherer: prometheus.DefaultGatherer,
		out:      out,
	}
}

// Routes maps command names to their implementations.
func (h *Handler) Routes() map[string]Command {
	return map[string]Command{
		"init":         h.Init,
		"posts":        h.Posts,
		"post show":    h.ShowPost,
		"post new":     h.NewPost,
		"post edit":    h.EditPost,
		"post rm":      h.DeletePost,
		"post like":    h.LikePost,
		"comments":     h.Comments,
		"comment new":  h.NewComment,
		"comment edit": h.EditComment,
		"comment rm":   h.DeleteComment,
		"comment like": h.LikeComment,
		"seed":         h.Seed,
		"stats":        h.Stats,
	}
}

// Dispatch finds the command for args and runs it. Two-word commands
// ("post new") are tried before one-word ones.
func (h *Handler) Dispatch(ctx context.Context, args []string) error {
	routes := h.Routes()
	if len(args) >= 2 {
		if cmd, ok := routes[args[0]+" "+args[1]]; ok {
			return WithRecover(cmd)(ctx, args[2:])
		}
	}
	if len(args) >= 1 {
		if cmd, ok := routes[args[0]]; ok {
			return WithRecover(cmd)(ctx, args[1:])
		}
	}
	return fmt.Errorf("%w: unknown command %q (have: %s)", ErrUsage, strings.Join(args, " "), strings.Join(h.commandNames(), ", "))
}

func (h *Handler) commandNames() []string {
	names := make([]string, 0, len(h.Routes()))
	for name := range h.Routes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// -------- Posts

func (h *Handler) Init(ctx context.Context, _ []string) error {
	u, err := h.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if h.JSON {
		return h.writeJSON(u)
	}
	fmt.Fprintf(h.out, "board ready, acting as %s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	return nil
}

func (h *Handler) Posts(ctx context.Context, _ []string) error {
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	posts, err := h.svc.ListPosts(ctx, uid)
	if err != nil {
		return err
	}
	if h.JSON {
		return h.writeJSON(h.maskAll(posts))
	}
	if len(posts) == 0 {
		fmt.Fprintln(h.out, "no posts yet")
		return nil
	}
	for _, p := range posts {
		h.printPost(h.mask(p))
	}
	return nil
}

func (h *Handler) ShowPost(ctx context.Context, args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	return h.showPost(ctx, id)
}

func (h *Handler) showPost(ctx context.Context, id int64) error {
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	post, err := h.svc.GetPost(ctx, id, uid)
	if err != nil {
		return err
	}
	comments, err := h.svc.ListComments(ctx, id, uid)
	if err != nil {
		return err
	}
	post = h.mask(post)
	if h.JSON {
		return h.writeJSON(map[string]any{"post": post, "comments": comments})
	}
	h.printPost(post)
	for _, c := range comments {
		h.printComment(c)
	}
	return nil
}

func (h *Handler) NewPost(ctx context.Context, args []string) error {
	fs := newFlagSet("post new")
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post body")
	tag := fs.String("tag", string(models.TagGeneral), "one of General, Question, Request, Nsfw, Spoiler")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := h.svc.CreatePost(ctx, service.CreatePostInput{UserID: uid, Title: *title, Content: *content, Tag: *tag})
	if err != nil {
		return err
	}
	return h.showPost(ctx, id)
}

// EditPost replaces title, content and tag; flags left unset keep the
// current values.
func (h *Handler) EditPost(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("post edit")
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new body")
	tag := fs.String("tag", "", "new tag")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	current, err := h.svc.GetPost(ctx, id, uid)
	if err != nil {
		return err
	}
	in := service.UpdatePostInput{PostID: id, Title: current.Title, Content: current.Content, Tag: string(current.Tag)}
	if *title != "" {
		in.Title = *title
	}
	if *content != "" {
		in.Content = *content
	}
	if *tag != "" {
		in.Tag = *tag
	}
	if err := h.svc.UpdatePost(ctx, in); err != nil {
		return err
	}
	return h.showPost(ctx, id)
}

func (h *Handler) DeletePost(ctx context.Context, args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePost(ctx, id); err != nil {
		return err
	}
	if !h.JSON {
		fmt.Fprintf(h.out, "deleted post %d\n", id)
	}
	return h.Posts(ctx, nil)
}

func (h *Handler) LikePost(ctx context.Context, args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if _, err := h.svc.ToggleLikePost(ctx, id, uid); err != nil {
		return err
	}
	return h.showPost(ctx, id)
}

// -------- Comments

func (h *Handler) Comments(ctx context.Context, args []string) error {
	postID, _, err := parseID(args)
	if err != nil {
		return err
	}
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	comments, err := h.svc.ListComments(ctx, postID, uid)
	if err != nil {
		return err
	}
	if h.JSON {
		return h.writeJSON(comments)
	}
	if len(comments) == 0 {
		fmt.Fprintln(h.out, "no replies yet")
	}
	for _, c := range comments {
		h.printComment(c)
	}
	return nil
}

func (h *Handler) NewComment(ctx context.Context, args []string) error {
	postID, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("comment new")
	content := fs.String("content", "", "reply text")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if _, err := h.svc.CreateComment(ctx, postID, *content, uid); err != nil {
		return err
	}
	return h.showPost(ctx, postID)
}

func (h *Handler) EditComment(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("comment edit")
	content := fs.String("content", "", "new reply text")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	c, err := h.lookupComment(ctx, id)
	if err != nil {
		return err
	}
	if err := h.svc.UpdateComment(ctx, id, *content); err != nil {
		return err
	}
	return h.showPost(ctx, c.PostID)
}

// DeleteComment resolves the parent post before deleting so the thread can
// be shown afterwards.
func (h *Handler) DeleteComment(ctx context.Context, args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	c, err := h.lookupComment(ctx, id)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteComment(ctx, id); err != nil {
		return err
	}
	if !h.JSON {
		fmt.Fprintf(h.out, "deleted comment %d\n", id)
	}
	return h.showPost(ctx, c.PostID)
}

func (h *Handler) LikeComment(ctx context.Context, args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	c, err := h.lookupComment(ctx, id)
	if err != nil {
		return err
	}
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if _, err := h.svc.ToggleLikeComment(ctx, id, uid); err != nil {
		return err
	}
	return h.showPost(ctx, c.PostID)
}

func (h *Handler) lookupComment(ctx context.Context, id int64) (*models.Comment, error) {
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return h.svc.GetComment(ctx, id, uid)
}

// -------- Maintenance

func (h *Handler) Seed(ctx context.Context, args []string) error {
	fs := newFlagSet("seed")
	posts := fs.Int("posts", 10, "number of posts to create")
	comments := fs.Int("comments", 4, "max comments per post")
	likes := fs.Int("likes", 40, "like chance in percent")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *posts < 0 || *comments < 0 {
		return fmt.Errorf("%w: -posts and -comments must not be negative", ErrUsage)
	}
	uid, err := h.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := h.seeder.Run(ctx, seed.Options{Posts: *posts, MaxComments: *comments, LikeChance: *likes, UserID: uid})
	if err != nil {
		return err
	}
	if h.JSON {
		return h.writeJSON(res)
	}
	fmt.Fprintf(h.out, "seeded %d posts, %d comments, %d likes\n", res.Posts, res.Comments, res.Likes)
	return nil
}

// Stats prints the data-layer metrics gathered in this process.
func (h *Handler) Stats(_ context.Context, _ []string) error {
	families, err := h.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "board_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(h.out, mf); err != nil {
			return err
		}
	}
	return nil
}

// -------- helpers

const hiddenContent = "[hidden: marked %s, rerun with -reveal to view]"

func (h *Handler) mask(p *models.Post) *models.Post {
	if h.Reveal || !p.Tag.IsSensitive() {
		return p
	}
	masked := *p
	masked.Content = fmt.Sprintf(hiddenContent, p.Tag)
	return &masked
}

func (h *Handler) maskAll(posts []*models.Post) []*models.Post {
	out := make([]*models.Post, len(posts))
	for i, p := range posts {
		out[i] = h.mask(p)
	}
	return out
}

func (h *Handler) printPost(p *models.Post) {
	heart := " "
	if p.LikedByCurrentUser {
		heart = "*"
	}
	fmt.Fprintf(h.out, "#%d [%s] %s\n", p.ID, p.Tag, p.Title)
	fmt.Fprintf(h.out, "    %s\n", strings.ReplaceAll(p.Content, "\n", "\n    "))
	fmt.Fprintf(h.out, "    %s %d likes  %d replies  %s\n",
		heart, p.LikeCount, p.CommentCount, p.CreatedAt.Format("2006-01-02 15:04"))
}

func (h *Handler) printComment(c *models.Comment) {
	heart := " "
	if c.LikedByCurrentUser {
		heart = "*"
	}
	fmt.Fprintf(h.out, "  > #%d %s\n", c.ID, c.Content)
	fmt.Fprintf(h.out, "    %s %d likes  %s\n", heart, c.LikeCount, c.CreatedAt.Format("2006-01-02 15:04"))
}

func (h *Handler) writeJSON(v any) error {
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", ErrUsage, fs.Name(), fs.Args())
	}
	return nil
}

// parseID reads a leading numeric id and returns the remaining args.
func parseID(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%w: missing id", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("%w: invalid id %q", ErrUsage, args[0])
	}
	return id, args[1:], nil
}

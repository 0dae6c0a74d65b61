package models

import "time"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Post is a post row augmented with its like/comment aggregates for one viewer.
type Post struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	Tag                Tag       `json:"tag"`
	CreatedAt          time.Time `json:"created_at"`
	LikeCount          int       `json:"like_count"`
	CommentCount       int       `json:"comment_count"`
	LikedByCurrentUser bool      `json:"liked_by_current_user"`
}

// Comment is a comment row augmented with its like aggregates for one viewer.
type Comment struct {
	ID                 int64     `json:"id"`
	PostID             int64     `json:"post_id"`
	UserID             int64     `json:"user_id"`
	Content            string    `json:"content"`
	CreatedAt          time.Time `json:"created_at"`
	LikeCount          int       `json:"like_count"`
	LikedByCurrentUser bool      `json:"liked_by_current_user"`
}

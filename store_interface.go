package masterblog

import "context"

type StoreInterface interface {
	AutoMigrate() error
	EnableDebug(debug bool) StoreInterface
	Seed(ctx context.Context) error

	PostCount(ctx context.Context, options PostQueryOptions) (int64, error)
	PostCreate(ctx context.Context, post *Post) error
	PostDelete(ctx context.Context, post *Post) error
	PostDeleteByID(ctx context.Context, postID string) error
	PostFindByID(ctx context.Context, id string) (*Post, error)
	PostList(ctx context.Context, options PostQueryOptions) ([]Post, error)
	PostSearch(ctx context.Context, titleQuery string, contentQuery string) ([]Post, error)
	PostUpdate(ctx context.Context, post *Post) error
}

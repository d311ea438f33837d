package masterblog

import (
	"context"
	"errors"

	"github.com/gouniverse/maputils"
	"github.com/gouniverse/utils"
)

// seedJson holds the posts present at process start before any mutation.
const seedJson = `[
	{"title": "First post", "content": "This is the first post."},
	{"title": "Second post", "content": "This is the second post."}
]`

// Seed inserts the initial posts. It is a no-op when the table already
// has posts, so calling it twice does not duplicate the seed data.
func (st *store) Seed(ctx context.Context) error {
	count, err := st.PostCount(ctx, PostQueryOptions{})

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	seedAny, err := utils.FromJSON(seedJson, []any{})

	if err != nil {
		return err
	}

	seedList, ok := seedAny.([]any)

	if !ok {
		return errors.New("post store: seed data is not a list")
	}

	for _, seedEntry := range seedList {
		entryMap, ok := seedEntry.(map[string]any)

		if !ok {
			return errors.New("post store: seed entry is not a map")
		}

		data := maputils.MapStringAnyToMapStringString(entryMap)

		post := NewPost().
			SetTitle(data[COLUMN_TITLE]).
			SetContent(data[COLUMN_CONTENT])

		if err := st.PostCreate(ctx, post); err != nil {
			return err
		}
	}

	return nil
}

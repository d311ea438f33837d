package masterblog

import (
	"strconv"

	"github.com/golang-module/carbon/v2"
	"github.com/gouniverse/dataobject"
)

// var _ dataobject.DataObjectFluentInterface = (*Post)(nil) // verify it extends the data object interface

func NewPost() *Post {
	o := &Post{}
	o.SetID("").
		SetTitle("").
		SetContent("").
		SetCreatedAt(carbon.NewCarbon().Now().Format("Y-m-d H:i:s")).
		SetUpdatedAt(carbon.NewCarbon().Now().Format("Y-m-d H:i:s"))

	return o
}

func NewPostFromExistingData(data map[string]string) *Post {
	o := &Post{}
	o.Hydrate(data)
	return o
}

type Post struct {
	dataobject.DataObject
}

// ============================ SETTERS AND GETTERS ============================

func (o *Post) ID() string {
	return o.Get(COLUMN_ID)
}

// IDInt returns the post identifier as the integer the API exposes.
// Returns 0 for a post that has not been assigned an id yet.
func (o *Post) IDInt() int64 {
	id, err := strconv.ParseInt(o.ID(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (o *Post) SetID(id string) *Post {
	o.Set(COLUMN_ID, id)
	return o
}

func (o *Post) SetIDInt(id int64) *Post {
	return o.SetID(strconv.FormatInt(id, 10))
}

func (o *Post) Title() string {
	return o.Get(COLUMN_TITLE)
}

func (o *Post) SetTitle(title string) *Post {
	o.Set(COLUMN_TITLE, title)
	return o
}

func (o *Post) Content() string {
	return o.Get(COLUMN_CONTENT)
}

func (o *Post) SetContent(content string) *Post {
	o.Set(COLUMN_CONTENT, content)
	return o
}

func (o *Post) CreatedAt() string {
	return o.Get(COLUMN_CREATED_AT)
}

func (o *Post) CreatedAtCarbon() carbon.Carbon {
	return carbon.Parse(o.CreatedAt())
}

func (o *Post) SetCreatedAt(createdAt string) *Post {
	o.Set(COLUMN_CREATED_AT, createdAt)
	return o
}

func (o *Post) UpdatedAt() string {
	return o.Get(COLUMN_UPDATED_AT)
}

func (o *Post) UpdatedAtCarbon() carbon.Carbon {
	return carbon.Parse(o.UpdatedAt())
}

func (o *Post) SetUpdatedAt(updatedAt string) *Post {
	o.Set(COLUMN_UPDATED_AT, updatedAt)
	return o
}

package masterblog

type PostQueryOptions struct {
	ID            string
	IDIn          []string
	TitleSearch   string
	ContentSearch string
	Offset        int
	Limit         int
	SortOrder     string
	OrderBy       string
	CountOnly     bool
}

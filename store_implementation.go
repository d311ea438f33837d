package masterblog

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/golang-module/carbon/v2"
	"github.com/gouniverse/sb"
	"github.com/samber/lo"
)

var _ StoreInterface = (*store)(nil) // verify it extends the interface

type store struct {
	postTableName      string
	db                 *sql.DB
	dbDriverName       string
	automigrateEnabled bool
	debugEnabled       bool

	// writeMutex serializes id allocation and the mutations that follow it,
	// so a create/update/delete is applied whole with respect to other writers.
	writeMutex sync.Mutex

	// lastID is the highest id handed out by this process. Ids are never
	// reused, even after the post holding the maximum id is deleted.
	lastID int64
}

// goquDialect resolves the driver name to a registered goqu dialect. The
// modernc driver registers as "sqlite" but goqu ships its sqlite support
// under "sqlite3"; an unregistered name would silently fall back to goqu's
// default dialect, which renders ILike as ILIKE — an operator sqlite does
// not have.
func (st *store) goquDialect() goqu.DialectWrapper {
	if st.dbDriverName == "sqlite" {
		return goqu.Dialect("sqlite3")
	}
	return goqu.Dialect(st.dbDriverName)
}

// AutoMigrate auto migrate
func (store *store) AutoMigrate() error {
	sql := store.sqlCreateTable()

	_, err := store.db.Exec(sql)
	if err != nil {
		log.Println(err)
		return err
	}

	return nil
}

// EnableDebug - enables the debug option
func (st *store) EnableDebug(debug bool) StoreInterface {
	st.debugEnabled = debug
	return st
}

func (store *store) PostCount(ctx context.Context, options PostQueryOptions) (int64, error) {
	options.CountOnly = true
	q := store.postQuery(options)

	sqlStr, params, errSql := q.Prepared(true).
		Limit(1).
		Select(goqu.COUNT(goqu.Star()).As("count")).
		ToSQL()

	if errSql != nil {
		return -1, errSql
	}

	if store.debugEnabled {
		log.Println(sqlStr)
	}

	db := sb.NewDatabase(store.db, store.dbDriverName)
	mapped, err := db.SelectToMapString(sqlStr, params...)
	if err != nil {
		return -1, err
	}

	if len(mapped) < 1 {
		return -1, nil
	}

	countStr := mapped[0]["count"]

	i, err := strconv.ParseInt(countStr, 10, 64)

	if err != nil {
		return -1, err
	}

	return i, nil
}

func (store *store) PostCreate(ctx context.Context, post *Post) error {
	if post == nil {
		return errors.New("post is nil")
	}

	store.writeMutex.Lock()
	defer store.writeMutex.Unlock()

	id, err := store.nextPostID(ctx)
	if err != nil {
		return err
	}

	post.SetIDInt(id)
	post.SetCreatedAt(carbon.Now(carbon.UTC).ToDateTimeString())
	post.SetUpdatedAt(carbon.Now(carbon.UTC).ToDateTimeString())

	data := post.Data()

	sqlStr, sqlParams, errSql := store.goquDialect().
		Insert(store.postTableName).
		Prepared(true).
		Rows(data).
		ToSQL()

	if errSql != nil {
		return errSql
	}

	if store.debugEnabled {
		log.Println(sqlStr)
	}

	_, err = store.db.ExecContext(ctx, sqlStr, sqlParams...)

	if err != nil {
		return err
	}

	store.lastID = id

	post.MarkAsNotDirty()

	return nil
}

func (store *store) PostDelete(ctx context.Context, post *Post) error {
	if post == nil {
		return errors.New("post is nil")
	}

	return store.PostDeleteByID(ctx, post.ID())
}

func (store *store) PostDeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("post id is empty")
	}

	store.writeMutex.Lock()
	defer store.writeMutex.Unlock()

	sqlStr, params, errSql := store.goquDialect().
		Delete(store.postTableName).
		Where(goqu.C(COLUMN_ID).Eq(id)).
		Prepared(true).
		ToSQL()

	if errSql != nil {
		return errSql
	}

	if store.debugEnabled {
		log.Println(sqlStr)
	}

	_, err := store.db.ExecContext(ctx, sqlStr, params...)

	return err
}

func (store *store) PostFindByID(ctx context.Context, id string) (*Post, error) {
	if id == "" {
		return nil, errors.New("post id is empty")
	}

	list, err := store.PostList(ctx, PostQueryOptions{
		ID:    id,
		Limit: 1,
	})

	if err != nil {
		return nil, err
	}

	if len(list) > 0 {
		return &list[0], nil
	}

	return nil, nil
}

func (st *store) PostList(ctx context.Context, options PostQueryOptions) ([]Post, error) {
	q := st.postQuery(options)

	sqlStr, sqlParams, errSql := q.Select().
		Prepared(true).
		ToSQL()

	if errSql != nil {
		log.Println(errSql)
		return []Post{}, errSql
	}

	if st.debugEnabled {
		log.Println(sqlStr)
	}

	db := sb.NewDatabase(st.db, st.dbDriverName)
	modelMaps, err := db.SelectToMapString(sqlStr, sqlParams...)
	if err != nil {
		return []Post{}, err
	}

	list := []Post{}

	lo.ForEach(modelMaps, func(modelMap map[string]string, index int) {
		model := NewPostFromExistingData(modelMap)
		list = append(list, *model)
	})

	return list, nil
}

// PostSearch finds the posts whose title contains titleQuery or whose content
// contains contentQuery, case-insensitively. An empty query never matches its
// field, so two empty queries return the empty list without touching the
// database.
func (st *store) PostSearch(ctx context.Context, titleQuery string, contentQuery string) ([]Post, error) {
	if titleQuery == "" && contentQuery == "" {
		return []Post{}, nil
	}

	return st.PostList(ctx, PostQueryOptions{
		TitleSearch:   titleQuery,
		ContentSearch: contentQuery,
	})
}

func (st *store) PostUpdate(ctx context.Context, post *Post) error {
	if post == nil {
		return errors.New("post is nil")
	}

	post.SetUpdatedAt(carbon.Now(carbon.UTC).ToDateTimeString())

	dataChanged := post.DataChanged()

	delete(dataChanged, COLUMN_ID) // ID is not updatable

	if len(dataChanged) < 1 {
		return nil
	}

	st.writeMutex.Lock()
	defer st.writeMutex.Unlock()

	sqlStr, params, errSql := st.goquDialect().
		Update(st.postTableName).
		Set(dataChanged).
		Where(goqu.C(COLUMN_ID).Eq(post.ID())).
		Prepared(true).
		ToSQL()

	if errSql != nil {
		return errSql
	}

	if st.debugEnabled {
		log.Println(sqlStr)
	}

	_, err := st.db.ExecContext(ctx, sqlStr, params...)

	post.MarkAsNotDirty()

	return err
}

// nextPostID returns 1 + the highest id in the table, or 1 + the highest id
// this process ever assigned, whichever is larger. The second term keeps ids
// from being reused after the post holding the maximum id is deleted.
// Callers must hold writeMutex.
func (st *store) nextPostID(ctx context.Context) (int64, error) {
	sqlStr, params, errSql := st.goquDialect().
		From(st.postTableName).
		Prepared(true).
		Select(goqu.COALESCE(goqu.MAX(goqu.C(COLUMN_ID)), 0).As("max_id")).
		ToSQL()

	if errSql != nil {
		return 0, errSql
	}

	if st.debugEnabled {
		log.Println(sqlStr)
	}

	db := sb.NewDatabase(st.db, st.dbDriverName)
	mapped, err := db.SelectToMapString(sqlStr, params...)
	if err != nil {
		return 0, err
	}

	maxID := int64(0)
	if len(mapped) > 0 {
		maxID, err = strconv.ParseInt(mapped[0]["max_id"], 10, 64)
		if err != nil {
			return 0, err
		}
	}

	if st.lastID > maxID {
		maxID = st.lastID
	}

	return maxID + 1, nil
}

func (st *store) postQuery(options PostQueryOptions) *goqu.SelectDataset {
	q := st.goquDialect().
		From(st.postTableName)

	if options.ID != "" {
		q = q.Where(goqu.C(COLUMN_ID).Eq(options.ID))
	}

	if len(options.IDIn) > 0 {
		q = q.Where(goqu.C(COLUMN_ID).In(options.IDIn))
	}

	if options.TitleSearch != "" || options.ContentSearch != "" {
		matchers := []goqu.Expression{}

		if options.TitleSearch != "" {
			matchers = append(matchers, goqu.C(COLUMN_TITLE).ILike("%"+options.TitleSearch+"%"))
		}

		if options.ContentSearch != "" {
			matchers = append(matchers, goqu.C(COLUMN_CONTENT).ILike("%"+options.ContentSearch+"%"))
		}

		q = q.Where(goqu.Or(matchers...))
	}

	if !options.CountOnly {
		if options.Limit > 0 {
			q = q.Limit(uint(options.Limit))
		}

		if options.Offset > 0 {
			q = q.Offset(uint(options.Offset))
		}

		q = q.Order(st.postOrder(options)...)
	}

	return q
}

// postOrder builds the ORDER BY clause. Without an explicit OrderBy posts come
// back in insertion order (ids are monotonic, so ascending id is insertion
// order). With an OrderBy the comparison is on the lowercased column, and the
// ascending id comes second so equal keys keep their insertion order.
func (st *store) postOrder(options PostQueryOptions) []exp.OrderedExpression {
	idAsc := goqu.C(COLUMN_ID).Asc()

	if options.OrderBy == "" {
		return []exp.OrderedExpression{idAsc}
	}

	column := goqu.L("LOWER(?)", goqu.C(options.OrderBy))

	if strings.EqualFold(options.SortOrder, sb.DESC) {
		return []exp.OrderedExpression{column.Desc(), idAsc}
	}

	return []exp.OrderedExpression{column.Asc(), idAsc}
}

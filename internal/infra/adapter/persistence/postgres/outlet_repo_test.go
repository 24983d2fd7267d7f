package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"news-cadence/internal/domain/entity"
	pg "news-cadence/internal/infra/adapter/persistence/postgres"
)

func outletRow(o *entity.Outlet) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"outlet_id", "name", "homepage_url", "feed_url", "category", "owner", "regions",
	}).AddRow(o.ID, o.Name, o.HomepageURL, o.FeedURL, o.Category, o.Owner,
		pq.Array(o.Regions))
}

func TestOutletRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := &entity.Outlet{
		ID: "times-a", Name: "Times A",
		HomepageURL: "https://times-a.example",
		FeedURL:     "https://times-a.example/feed.xml",
		Category:    "daily", Owner: "Example Media",
		Regions: []string{"north", "south"},
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT outlet_id")).
		WithArgs("times-a").
		WillReturnRows(outletRow(want))

	repo := pg.NewOutletRepo(db)
	got, err := repo.Get(context.Background(), "times-a")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOutletRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT outlet_id")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"outlet_id", "name", "homepage_url", "feed_url", "category", "owner", "regions",
		}))

	repo := pg.NewOutletRepo(db)
	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestOutletRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM outlets").
		WillReturnRows(outletRow(&entity.Outlet{
			ID: "times-a", Name: "Times A", Regions: []string{"north"},
		}))

	repo := pg.NewOutletRepo(db)
	got, err := repo.List(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
}

func TestOutletRepo_ReplaceAll(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	outlet := &entity.Outlet{ID: "times-a", Name: "Times A", Regions: []string{"north"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outlets")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outlets")).
		WithArgs(outlet.ID, outlet.Name, outlet.HomepageURL, outlet.FeedURL,
			outlet.Category, outlet.Owner, pq.Array(outlet.Regions)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := pg.NewOutletRepo(db)
	if err := repo.ReplaceAll(context.Background(), []*entity.Outlet{outlet}); err != nil {
		t.Fatalf("ReplaceAll err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOutletRepo_ReplaceAll_RollsBackOnInsertError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	outlet := &entity.Outlet{ID: "times-a", Name: "Times A"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outlets")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outlets")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	repo := pg.NewOutletRepo(db)
	if err := repo.ReplaceAll(context.Background(), []*entity.Outlet{outlet}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"news-cadence/internal/domain/entity"
	pg "news-cadence/internal/infra/adapter/persistence/postgres"
)

func sampleArticle(hash string) *entity.Article {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Article{
		OutletID:    "times-a",
		URL:         "https://times-a.example/story/" + hash,
		Title:       "story",
		PublishedAt: now,
		Source:      entity.MethodFeed,
		RetrievedAt: now,
		URLHash:     hash,
	}
}

func TestArticleRepo_InsertIfAbsent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := sampleArticle("aaa")
	b := sampleArticle("bbb")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs(a.OutletID, a.URL, a.Title, a.PublishedAt, a.TimestampApprox,
			string(a.Source), a.RetrievedAt, a.URLHash).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Second row already exists; ON CONFLICT reports zero rows affected.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs(b.OutletID, b.URL, b.Title, b.PublishedAt, b.TimestampApprox,
			string(b.Source), b.RetrievedAt, b.URLHash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewArticleRepo(db)
	inserted, err := repo.InsertIfAbsent(context.Background(), []*entity.Article{a, b})
	if err != nil {
		t.Fatalf("InsertIfAbsent err=%v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted=%d, want 1", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_InsertIfAbsent_UniqueViolation(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := sampleArticle("aaa")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := pg.NewArticleRepo(db)
	_, err := repo.InsertIfAbsent(context.Background(), []*entity.Article{a})
	if !errors.Is(err, entity.ErrDuplicateArticle) {
		t.Fatalf("err=%v, want ErrDuplicateArticle", err)
	}
}

func TestArticleRepo_ExistsByHashBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	hashes := []string{"aaa", "bbb", "ccc"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT url_hash FROM articles")).
		WithArgs("times-a", pq.Array(hashes)).
		WillReturnRows(sqlmock.NewRows([]string{"url_hash"}).AddRow("aaa").AddRow("ccc"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByHashBatch(context.Background(), "times-a", hashes)
	if err != nil {
		t.Fatalf("ExistsByHashBatch err=%v", err)
	}
	if !got["aaa"] || got["bbb"] || !got["ccc"] {
		t.Fatalf("got=%v", got)
	}
}

func TestArticleRepo_ExistsByHashBatch_EmptyInput(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByHashBatch(context.Background(), "times-a", nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestArticleRepo_ListInWindow(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	published := end.AddDate(0, 0, -2)

	mock.ExpectQuery("FROM articles").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "outlet_id", "url", "title", "published_at",
			"timestamp_approx", "source", "retrieved_at", "url_hash",
		}).AddRow(int64(1), "times-a", "https://times-a.example/story/1", "story",
			published, false, "feed", published, "aaa"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListInWindow(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListInWindow err=%v", err)
	}
	if len(got) != 1 || got[0].Source != entity.MethodFeed {
		t.Fatalf("got=%v", got)
	}
}

func TestArticleRepo_CountArticles(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	repo := pg.NewArticleRepo(db)
	count, err := repo.CountArticles(context.Background())
	if err != nil || count != 42 {
		t.Fatalf("count=%d err=%v", count, err)
	}
}

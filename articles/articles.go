package articles

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/newsgrab/extractor"
)

// TimeLayout is the format of collect_time values.
const TimeLayout = "2006-01-02 15:04:05"

// Unknown replaces a blank publication date or source on insert.
const Unknown = "unknown"

// ErrArticleNotFound is returned by Get for ids that were never assigned.
var ErrArticleNotFound = errors.New("article not found")

// Article is a persisted article record. Records are immutable once
// inserted.
type Article struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PubDate     string `json:"pub_date"`
	Source      string `json:"source"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	CollectTime string `json:"collect_time"`
}

// Summary is the projection of an Article shown in the history listing.
type Summary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PubDate     string `json:"pub_date"`
	CollectTime string `json:"collect_time"`
	URL         string `json:"url"`
}

// ArticleStore is an append-only article table in SQLite.
type ArticleStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewArticleStore opens the database at dsn and ensures the schema exists.
func NewArticleStore(dsn string) (*ArticleStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory:
	// databases consistent across calls.
	db.SetMaxOpenConns(1)

	store := &ArticleStore{db: db, now: time.Now}
	if err := store.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// InitSchema creates the articles table if it doesn't exist. It is safe to
// call any number of times.
func (s *ArticleStore) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		pub_date TEXT,
		source TEXT,
		content TEXT,
		url TEXT,
		collect_time TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

// Insert appends draft as a new record and returns its id.
func (s *ArticleStore) Insert(draft extractor.Draft) (int64, error) {
	query := `
		INSERT INTO articles (title, pub_date, source, content, url, collect_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		draft.Title,
		orUnknown(draft.PubDate),
		orUnknown(draft.Source),
		draft.Content,
		draft.URL,
		s.now().Format(TimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}

	return id, nil
}

// ListAll returns every record, most recently inserted first.
func (s *ArticleStore) ListAll() ([]Summary, error) {
	query := `
		SELECT id, title, pub_date, collect_time, url
		FROM articles
		ORDER BY id DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var summary Summary
		var title, pubDate, collectTime, url sql.NullString
		if err := rows.Scan(&summary.ID, &title, &pubDate, &collectTime, &url); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		summary.Title = title.String
		summary.PubDate = pubDate.String
		summary.CollectTime = collectTime.String
		summary.URL = url.String
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return summaries, nil
}

// Get retrieves a full record by id.
func (s *ArticleStore) Get(id int64) (*Article, error) {
	query := `
		SELECT id, title, pub_date, source, content, url, collect_time
		FROM articles
		WHERE id = ?
	`

	var article Article
	var title, pubDate, source, content, url, collectTime sql.NullString
	err := s.db.QueryRow(query, id).Scan(
		&article.ID, &title, &pubDate, &source, &content, &url, &collectTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}

	article.Title = title.String
	article.PubDate = pubDate.String
	article.Source = source.String
	article.Content = content.String
	article.URL = url.String
	article.CollectTime = collectTime.String

	return &article, nil
}

// Count returns the number of stored records.
func (s *ArticleStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return Unknown
	}
	return value
}

// Package store provides relational persistence for task managers,
// organisers, OSM users and archived document records. The SQL is kept
// portable across the three registered drivers; the driver is chosen by
// configuration.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// TaskManager is a Tasking Manager instance authorized to publish
// documents, owned by an organiser.
type TaskManager struct {
	ID          string
	Name        string
	OrganiserID string
}

// Organiser runs organised editing activities.
type Organiser struct {
	ID   string
	Name string
	Link string
}

// User is an OSM contributor. The id is the OSM account id, assigned
// externally, never generated here.
type User struct {
	ID       int64
	Username string
}

// Document records one archived project document: where it lives and the
// revision the last write produced.
type Document struct {
	ID           string
	Link         string
	CommitHash   string
	CreationDate time.Time
	CreatedBy    string // task manager id
}

// Store wraps a SQL database holding the documentation records.
type Store struct {
	db     *sql.DB
	driver string
}

// New opens the database named by driver ("sqlite", "pgx" or "mysql")
// and dsn, and ensures all required tables exist.
func New(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS organiser (
			id   VARCHAR(36) PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			link VARCHAR(200) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS task_manager (
			id           VARCHAR(36) PRIMARY KEY,
			name         VARCHAR(200) NOT NULL,
			organiser_id VARCHAR(36) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS osm_user (
			id       BIGINT PRIMARY KEY,
			username VARCHAR(200) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS document (
			id            VARCHAR(36) PRIMARY KEY,
			link          VARCHAR(200) NOT NULL,
			commit_hash   VARCHAR(500) NOT NULL,
			creation_date TIMESTAMP NOT NULL,
			created_by    VARCHAR(36) NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// rebind rewrites '?' placeholders to the $n form pgx requires. The
// sqlite and mysql drivers take '?' as written.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// CreateTaskManager inserts a task manager and returns it with a fresh id.
func (s *Store) CreateTaskManager(name, organiserID string) (TaskManager, error) {
	tm := TaskManager{ID: uuid.NewString(), Name: name, OrganiserID: organiserID}
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO task_manager (id, name, organiser_id) VALUES (?, ?, ?)`),
		tm.ID, tm.Name, tm.OrganiserID,
	)
	if err != nil {
		return TaskManager{}, fmt.Errorf("create task manager: %w", err)
	}
	return tm, nil
}

// GetTaskManager returns the task manager with the given id.
func (s *Store) GetTaskManager(id string) (TaskManager, error) {
	var tm TaskManager
	err := s.db.QueryRow(
		s.rebind(`SELECT id, name, organiser_id FROM task_manager WHERE id = ?`), id,
	).Scan(&tm.ID, &tm.Name, &tm.OrganiserID)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskManager{}, fmt.Errorf("task manager %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return TaskManager{}, fmt.Errorf("get task manager: %w", err)
	}
	return tm, nil
}

// ListTaskManagers returns every task manager, name order.
func (s *Store) ListTaskManagers() ([]TaskManager, error) {
	rows, err := s.db.Query(`SELECT id, name, organiser_id FROM task_manager ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list task managers: %w", err)
	}
	defer rows.Close()

	var out []TaskManager
	for rows.Next() {
		var tm TaskManager
		if err := rows.Scan(&tm.ID, &tm.Name, &tm.OrganiserID); err != nil {
			return nil, fmt.Errorf("scan task manager: %w", err)
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}

// UpdateTaskManager rewrites a task manager's mutable fields.
func (s *Store) UpdateTaskManager(tm TaskManager) error {
	res, err := s.db.Exec(
		s.rebind(`UPDATE task_manager SET name = ?, organiser_id = ? WHERE id = ?`),
		tm.Name, tm.OrganiserID, tm.ID,
	)
	if err != nil {
		return fmt.Errorf("update task manager: %w", err)
	}
	return affectedOne(res, "task manager", tm.ID)
}

// DeleteTaskManager removes the task manager with the given id.
func (s *Store) DeleteTaskManager(id string) error {
	res, err := s.db.Exec(s.rebind(`DELETE FROM task_manager WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task manager: %w", err)
	}
	return affectedOne(res, "task manager", id)
}

// CreateOrganiser inserts an organiser and returns it with a fresh id.
func (s *Store) CreateOrganiser(name, link string) (Organiser, error) {
	org := Organiser{ID: uuid.NewString(), Name: name, Link: link}
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO organiser (id, name, link) VALUES (?, ?, ?)`),
		org.ID, org.Name, org.Link,
	)
	if err != nil {
		return Organiser{}, fmt.Errorf("create organiser: %w", err)
	}
	return org, nil
}

// GetOrganiser returns the organiser with the given id.
func (s *Store) GetOrganiser(id string) (Organiser, error) {
	var org Organiser
	err := s.db.QueryRow(
		s.rebind(`SELECT id, name, link FROM organiser WHERE id = ?`), id,
	).Scan(&org.ID, &org.Name, &org.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return Organiser{}, fmt.Errorf("organiser %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Organiser{}, fmt.Errorf("get organiser: %w", err)
	}
	return org, nil
}

// ListOrganisers returns every organiser, name order.
func (s *Store) ListOrganisers() ([]Organiser, error) {
	rows, err := s.db.Query(`SELECT id, name, link FROM organiser ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list organisers: %w", err)
	}
	defer rows.Close()

	var out []Organiser
	for rows.Next() {
		var org Organiser
		if err := rows.Scan(&org.ID, &org.Name, &org.Link); err != nil {
			return nil, fmt.Errorf("scan organiser: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

// UpdateOrganiser rewrites an organiser's mutable fields.
func (s *Store) UpdateOrganiser(org Organiser) error {
	res, err := s.db.Exec(
		s.rebind(`UPDATE organiser SET name = ?, link = ? WHERE id = ?`),
		org.Name, org.Link, org.ID,
	)
	if err != nil {
		return fmt.Errorf("update organiser: %w", err)
	}
	return affectedOne(res, "organiser", org.ID)
}

// DeleteOrganiser removes the organiser with the given id.
func (s *Store) DeleteOrganiser(id string) error {
	res, err := s.db.Exec(s.rebind(`DELETE FROM organiser WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete organiser: %w", err)
	}
	return affectedOne(res, "organiser", id)
}

// UpsertUser records an OSM contributor, replacing the username when the
// id is already known. Usernames change on osm.org; ids do not.
func (s *Store) UpsertUser(id int64, username string) error {
	res, err := s.db.Exec(
		s.rebind(`UPDATE osm_user SET username = ? WHERE id = ?`), username, id,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = s.db.Exec(
		s.rebind(`INSERT INTO osm_user (id, username) VALUES (?, ?)`), id, username,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser returns the OSM contributor with the given id.
func (s *Store) GetUser(id int64) (User, error) {
	var u User
	err := s.db.QueryRow(
		s.rebind(`SELECT id, username FROM osm_user WHERE id = ?`), id,
	).Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateDocument records an archived document: the link it is served
// under, the revision its commit produced, and which task manager wrote
// it.
func (s *Store) CreateDocument(link, commitHash, createdBy string) (Document, error) {
	doc := Document{
		ID:           uuid.NewString(),
		Link:         link,
		CommitHash:   commitHash,
		CreationDate: time.Now().UTC(),
		CreatedBy:    createdBy,
	}
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO document (id, link, commit_hash, creation_date, created_by)
		 VALUES (?, ?, ?, ?, ?)`),
		doc.ID, doc.Link, doc.CommitHash, doc.CreationDate, doc.CreatedBy,
	)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// GetDocument returns the document record with the given id.
func (s *Store) GetDocument(id string) (Document, error) {
	var doc Document
	err := s.db.QueryRow(
		s.rebind(`SELECT id, link, commit_hash, creation_date, created_by
		 FROM document WHERE id = ?`), id,
	).Scan(&doc.ID, &doc.Link, &doc.CommitHash, &doc.CreationDate, &doc.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// UpdateDocumentCommit moves a document record to the revision a new
// commit produced.
func (s *Store) UpdateDocumentCommit(id, commitHash string) error {
	res, err := s.db.Exec(
		s.rebind(`UPDATE document SET commit_hash = ? WHERE id = ?`), commitHash, id,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return affectedOne(res, "document", id)
}

// ListDocuments returns every document record, newest first.
func (s *Store) ListDocuments() ([]Document, error) {
	rows, err := s.db.Query(
		`SELECT id, link, commit_hash, creation_date, created_by
		 FROM document ORDER BY creation_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Link, &doc.CommitHash, &doc.CreationDate, &doc.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func affectedOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: %w", entity, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
	}
	return nil
}

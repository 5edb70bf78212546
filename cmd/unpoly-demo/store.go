package main

import (
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

type Task struct {
	ID   int64
	Name string
	Done bool
}

// TaskStore persists the demo's tasks in SQLite.
type TaskStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewTaskStore creates a new store with the given filename as the db.
// If the file name is empty, a new in-memory db is opened.
func NewTaskStore(filename string) TaskStore {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		panic(err)
	}
	return TaskStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

// All returns every task. With onlyOpen set, done tasks are skipped.
func (s TaskStore) All(onlyOpen bool) ([]Task, error) {
	query := "SELECT id, name, done FROM tasks ORDER BY id"
	if onlyOpen {
		query = "SELECT id, name, done FROM tasks WHERE done = 0 ORDER BY id"
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.Name, &task.Done); err != nil {
			return tasks, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s TaskStore) Get(id int64) (Task, bool, error) {
	var task Task
	err := s.db.QueryRow("SELECT id, name, done FROM tasks WHERE id = ?", id).
		Scan(&task.ID, &task.Name, &task.Done)
	if err == sql.ErrNoRows {
		return task, false, nil
	}
	if err != nil {
		return task, false, err
	}
	return task, true, nil
}

func (s TaskStore) Insert(name string) (Task, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	result, err := s.db.Exec("INSERT INTO tasks (name) VALUES (?)", name)
	if err != nil {
		return Task{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	return Task{ID: id, Name: name}, nil
}

func (s TaskStore) SetDone(id int64, done bool) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("UPDATE tasks SET done = ? WHERE id = ?", done, id)
	return err
}

func (s TaskStore) Delete(id int64) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

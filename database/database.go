package database

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulldump/metaview/store"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

type Config struct {
	Dir string
}

type Database struct {
	Config *Config
	status string
	Tables map[string]*Table
	exit   chan struct{}
}

func NewDatabase(config *Config) *Database {
	return &Database{
		Config: config,
		status: StatusOpening,
		Tables: map[string]*Table{},
		exit:   make(chan struct{}),
	}
}

func (db *Database) GetStatus() string {
	return db.status
}

func (db *Database) CreateTable(name string, props []store.Property) (*Table, error) {

	_, exists := db.Tables[name]
	if exists {
		return nil, fmt.Errorf("table '%s' already exists", name)
	}

	filename := path.Join(db.Config.Dir, name)
	t, err := CreateTable(name, filename, props)
	if err != nil {
		return nil, err
	}

	db.Tables[name] = t

	return t, nil
}

func (db *Database) DropTable(name string) error {

	t, exists := db.Tables[name]
	if !exists {
		return fmt.Errorf("table '%s' not found", name)
	}

	err := t.Close()
	if err != nil {
		return err
	}

	delete(db.Tables, name)

	return os.Remove(t.Filename)
}

func (db *Database) Load() error {

	fmt.Printf("Loading database %s...\n", db.Config.Dir) // todo: move to logger
	dir := db.Config.Dir
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	err = filepath.WalkDir(dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := filename
		name = strings.TrimPrefix(name, dir)
		name = strings.TrimPrefix(name, "/")

		t0 := time.Now()
		t, err := OpenTable(name, filename)
		if err != nil {
			fmt.Printf("ERROR: open table '%s': %s\n", filename, err.Error()) // todo: move to logger
			return err
		}
		fmt.Println(name, t.Seq.Size(), time.Since(t0)) // todo: move to logger

		db.Tables[name] = t

		return nil
	})

	if err != nil {
		db.status = StatusClosing
		return err
	}

	db.status = StatusOperating

	return nil
}

func (db *Database) Start() error {

	go db.Load()

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.status = StatusClosing

	var lastErr error
	for name, t := range db.Tables {
		fmt.Printf("Closing '%s'...\n", name)
		err := t.Close()
		if err != nil {
			fmt.Printf("ERROR: close(%s): %s", name, err.Error())
			lastErr = err
		}
	}

	return lastErr
}

package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/metaview/remap"
	"github.com/fulldump/metaview/store"
)

var (
	ErrorViewNotFound      = errors.New("view not found")
	ErrorViewAlreadyExists = errors.New("view already exists")
	ErrorColumnNotFound    = errors.New("column not found")
)

// Command is the envelope of every persisted table mutation, one JSON
// object per line in the table file.
type Command struct {
	Name      string          `json:"name"`
	Uuid      string          `json:"uuid"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ViewDef describes one virtual view over a table. The viewer itself and
// its companion map sequence are derived state, rebuilt on open by
// replaying the table log through the view.
type ViewDef struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"` // readonly|hash|blocked|ordered|indexed
	NumKeys int      `json:"num_keys,omitempty"`
	Props   []string `json:"props,omitempty"`
	Unique  bool     `json:"unique,omitempty"`

	viewer remap.Viewer
	mapSeq *store.Mem
}

// MapSequence exposes the view's companion map (hash slots or permutation),
// nil for views that keep no map.
func (d *ViewDef) MapSequence() *store.Mem { return d.mapSeq }

// Table is one named sequence plus its views, persisted as an append-only
// command log.
type Table struct {
	Name  string
	Seq   *store.Mem
	Views map[string]*ViewDef

	Filename string
	file     *os.File
	mu       sync.Mutex
}

type createPayload struct {
	Props []store.Property `json:"props"`
}

type insertPayload struct {
	View   string                 `json:"view,omitempty"`
	Values map[string]interface{} `json:"values"`
}

type removePayload struct {
	View  string `json:"view,omitempty"`
	Pos   int    `json:"pos"`
	Count int    `json:"count"`
}

type setPayload struct {
	View   string      `json:"view,omitempty"`
	Row    int         `json:"row"`
	Column string      `json:"column"`
	Value  interface{} `json:"value"`
}

type dropViewPayload struct {
	Name string `json:"name"`
}

// CreateTable starts a fresh table file with the given schema.
func CreateTable(name, filename string, props []store.Property) (*Table, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("table file '%s' already exists", filename)
	}

	t := &Table{
		Name:     name,
		Seq:      store.NewMem(props...),
		Views:    map[string]*ViewDef{},
		Filename: filename,
	}

	t.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open table for write: %w", err)
	}

	return t, t.persist("create", createPayload{Props: props})
}

// OpenTable replays a table file. Mutations are re-applied through the same
// code paths that produced them, so derived view state (hash maps,
// permutations, block offsets) converges to exactly the persisted history.
func OpenTable(name, filename string) (*Table, error) {
	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open table for read: %w", err)
	}
	defer f.Close()

	t := &Table{
		Name:     name,
		Seq:      store.NewMem(),
		Views:    map[string]*ViewDef{},
		Filename: filename,
	}

	j := json.NewDecoder(f)
	for {
		command := &Command{}
		err := j.Decode(&command)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode command: %w", err)
		}
		if err := t.replay(command); err != nil {
			return nil, fmt.Errorf("replay %s: %w", command.Name, err)
		}
	}

	t.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open table for write: %w", err)
	}

	return t, nil
}

func (t *Table) replay(command *Command) error {
	switch command.Name {
	case "create":
		payload := createPayload{}
		if err := json.Unmarshal(command.Payload, &payload); err != nil {
			return err
		}
		t.Seq = store.NewMem(payload.Props...)
		return nil
	case "insert":
		payload := insertPayload{}
		if err := json.Unmarshal(command.Payload, &payload); err != nil {
			return err
		}
		return t.applyInsert(payload.View, payload.Values)
	case "remove":
		payload := removePayload{}
		if err := json.Unmarshal(command.Payload, &payload); err != nil {
			return err
		}
		return t.applyRemove(payload.View, payload.Pos, payload.Count)
	case "set":
		payload := setPayload{}
		if err := json.Unmarshal(command.Payload, &payload); err != nil {
			return err
		}
		return t.applySet(payload.View, payload.Row, payload.Column, payload.Value)
	case "createview":
		def := &ViewDef{}
		if err := json.Unmarshal(command.Payload, def); err != nil {
			return err
		}
		return t.applyCreateView(def)
	case "dropview":
		payload := dropViewPayload{}
		if err := json.Unmarshal(command.Payload, &payload); err != nil {
			return err
		}
		delete(t.Views, payload.Name)
		return nil
	}
	return fmt.Errorf("unknown command '%s'", command.Name)
}

func (t *Table) persist(name string, payload interface{}) error {
	if t.file == nil {
		return fmt.Errorf("table '%s' is closed", t.Name)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	command := &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		Payload:   raw,
	}

	if err := json.NewEncoder(t.file).Encode(command); err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return nil
}

func (t *Table) view(name string) (*ViewDef, error) {
	def, exist := t.Views[name]
	if !exist {
		return nil, fmt.Errorf("view '%s': %w", name, ErrorViewNotFound)
	}
	return def, nil
}

// Viewer resolves a view by name. The empty name is the raw table: a
// read-write pass-through with no index.
func (t *Table) Viewer(name string) (remap.Viewer, error) {
	if name == "" {
		return &rawViewer{seq: t.Seq}, nil
	}
	def, err := t.view(name)
	if err != nil {
		return nil, err
	}
	return def.viewer, nil
}

func (t *Table) applyCreateView(def *ViewDef) error {
	if _, exist := t.Views[def.Name]; exist {
		return fmt.Errorf("view '%s': %w", def.Name, ErrorViewAlreadyExists)
	}

	switch def.Kind {
	case "readonly":
		def.viewer = remap.NewReadOnly(t.Seq)
	case "hash":
		def.mapSeq = store.NewMem(store.Int("_H"), store.Int("_R"))
		v, err := remap.NewHash(t.Seq, def.NumKeys, def.mapSeq)
		if err != nil {
			return err
		}
		def.viewer = v
	case "blocked":
		v, err := remap.NewBlocked(t.Seq)
		if err != nil {
			return err
		}
		def.viewer = v
	case "ordered":
		def.viewer = remap.NewOrdered(t.Seq, def.NumKeys)
	case "indexed":
		props, err := t.resolveProps(def.Props)
		if err != nil {
			return err
		}
		def.mapSeq = store.NewMem(store.Int("_X"))
		v, err := remap.NewIndexed(t.Seq, def.mapSeq, props, def.Unique)
		if err != nil {
			return err
		}
		def.viewer = v
	default:
		return fmt.Errorf("unknown view kind '%s'", def.Kind)
	}

	t.Views[def.Name] = def
	return nil
}

func (t *Table) resolveProps(names []string) ([]store.Property, error) {
	props := []store.Property{}
	for _, name := range names {
		col := t.Seq.FindProperty(name)
		if col < 0 {
			return nil, fmt.Errorf("property '%s': %w", name, ErrorColumnNotFound)
		}
		props = append(props, t.Seq.NthProperty(col))
	}
	return props, nil
}

// schema returns the record schema behind a view: the table schema, except
// for blocked views whose records live inside the blocks.
func (t *Table) schema(view string) (store.Sequence, error) {
	if view == "" {
		return t.Seq, nil
	}
	def, err := t.view(view)
	if err != nil {
		return nil, err
	}
	if def.Kind == "blocked" {
		return def.viewer.Template(), nil
	}
	return t.Seq, nil
}

func (t *Table) cursorFor(view string, values map[string]interface{}) (store.Cursor, error) {
	schema, err := t.schema(view)
	if err != nil {
		return store.Cursor{}, err
	}

	props := []store.Property{}
	for i := 0; i < schema.NumProperties(); i++ {
		props = append(props, schema.NthProperty(i))
	}
	if len(props) == 0 {
		// schema-less records (first insert into a blocked view) infer
		// their columns from the values
		props = store.InferProperties(values)
	}

	return store.RowCursor(props, values)
}

func (t *Table) applyInsert(view string, values map[string]interface{}) error {
	cur, err := t.cursorFor(view, values)
	if err != nil {
		return err
	}
	viewer, err := t.Viewer(view)
	if err != nil {
		return err
	}
	return viewer.Insert(viewer.Size(), cur, 1)
}

func (t *Table) applyRemove(view string, pos, count int) error {
	viewer, err := t.Viewer(view)
	if err != nil {
		return err
	}
	return viewer.Remove(pos, count)
}

func (t *Table) applySet(view string, row int, column string, value interface{}) error {
	viewer, err := t.Viewer(view)
	if err != nil {
		return err
	}
	schema, err := t.schema(view)
	if err != nil {
		return err
	}

	col := schema.FindProperty(column)
	if col < 0 {
		return fmt.Errorf("column '%s': %w", column, ErrorColumnNotFound)
	}

	b, err := store.EncodeValue(schema.NthProperty(col).Kind, value)
	if err != nil {
		return err
	}
	return viewer.Set(row, col, b)
}

// Insert adds a record through a view ("" targets the raw table) and
// persists the operation.
func (t *Table) Insert(view string, values map[string]interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.applyInsert(view, values); err != nil {
		return err
	}
	return t.persist("insert", insertPayload{View: view, Values: values})
}

func (t *Table) Remove(view string, pos, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.applyRemove(view, pos, count); err != nil {
		return err
	}
	return t.persist("remove", removePayload{View: view, Pos: pos, Count: count})
}

// Set assigns one cell through a view. Beware the hash view semantics: a
// key-cell write can delete the row that already carried the new key.
func (t *Table) Set(view string, row int, column string, value interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.applySet(view, row, column, value); err != nil {
		return err
	}
	return t.persist("set", setPayload{View: view, Row: row, Column: column, Value: value})
}

func (t *Table) CreateView(def *ViewDef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.applyCreateView(def); err != nil {
		return err
	}
	return t.persist("createview", def)
}

func (t *Table) DropView(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.view(name); err != nil {
		return err
	}
	delete(t.Views, name)
	return t.persist("dropview", dropViewPayload{Name: name})
}

// Lookup resolves a key through a view's index. The key carries the view's
// key properties; pos -1 means the view cannot index this key.
func (t *Table) Lookup(view string, key map[string]interface{}) (pos, count int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, err := t.view(view)
	if err != nil {
		return 0, 0, err
	}

	var props []store.Property
	if def.Kind == "indexed" {
		props, err = t.resolveProps(def.Props)
		if err != nil {
			return 0, 0, err
		}
	} else {
		for i := 0; i < def.NumKeys && i < t.Seq.NumProperties(); i++ {
			props = append(props, t.Seq.NthProperty(i))
		}
	}

	cur, err := store.RowCursor(props, key)
	if err != nil {
		return 0, 0, err
	}

	pos, count = def.viewer.Lookup(cur)
	return pos, count, nil
}

// Row reads one record through a view as plain values.
func (t *Table) Row(view string, pos int) (map[string]interface{}, error) {
	viewer, err := t.Viewer(view)
	if err != nil {
		return nil, err
	}
	schema, err := t.schema(view)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{}
	for c := 0; c < schema.NumProperties(); c++ {
		p := schema.NthProperty(c)
		if p.Kind == store.KindView {
			continue // nested blocks are not flattened here
		}
		b, err := viewer.Get(pos, c)
		if err != nil {
			return nil, err
		}
		out[p.Name] = store.DecodeValue(p.Kind, b)
	}
	return out, nil
}

// WriteMap streams a view's index map in the store's sequence JSON layout.
func (t *Table) WriteMap(w io.Writer, view string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, err := t.view(view)
	if err != nil {
		return err
	}
	if def.mapSeq == nil {
		return fmt.Errorf("view '%s' has no index map", view)
	}
	return store.WriteSequence(w, def.mapSeq)
}

func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

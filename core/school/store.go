package school

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core"
)

var (
	// errors
	ErrNoDocument      = errors.New("document not found")
	ErrNotFound        = errors.New("user not found")
	ErrDuplicateLogin  = errors.New("a user with this login already exists")
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskInactive    = errors.New("task is no longer active")
	ErrClassNotFound   = errors.New("class not found")
	ErrEntryNotFound   = errors.New("knowledge entry not found")
	ErrInvalidBackup   = errors.New("invalid backup: version, users and classes are required")
	ErrSessionNotFound = errors.New("session not found")

	errNoChange = errors.New("no change")

	nowFunc = time.Now // mockable
)

type (
	// Backend persists whole documents under a key.
	// Load returns ErrNoDocument when nothing was saved under key yet.
	Backend interface {
		Load(ctx context.Context, key string) ([]byte, error)
		Save(ctx context.Context, key string, data []byte) error
	}

	Options struct {
		DocumentKey   string
		SessionKey    string
		PointsPerTask int
		MaxLogEntries int
		AdminPassword string // used when the document is first created
		SystemName    string
	}

	// Store is the record store of the application: every operation loads the whole document,
	// mutates it and writes it back.
	//
	// Operations of one Store are serialized. Stores of different processes sharing a backend
	// are not coordinated: the last writer wins.
	Store struct {
		backend    Backend
		logger     core.Logger
		opts       Options
		validate   *validator.Validate
		translator ut.Translator

		mu     sync.Mutex
		lastID int64
	}
)

func DefaultOptions() Options {
	return Options{
		DocumentKey:   "school_assistant_data",
		SessionKey:    "school_assistant_session",
		PointsPerTask: 50,
		MaxLogEntries: 1000,
		AdminPassword: "admin123",
		SystemName:    "School Assistant",
	}
}

func OptionsFromConfig(conf *core.Config) Options {
	opts := DefaultOptions()
	if conf.Store.DocumentKey != "" {
		opts.DocumentKey = conf.Store.DocumentKey
	}
	if conf.Store.SessionKey != "" {
		opts.SessionKey = conf.Store.SessionKey
	}
	if conf.Store.PointsPerTask > 0 {
		opts.PointsPerTask = conf.Store.PointsPerTask
	}
	if conf.Store.MaxLogEntries > 0 {
		opts.MaxLogEntries = conf.Store.MaxLogEntries
	}
	if conf.Store.AdminPassword != "" {
		opts.AdminPassword = conf.Store.AdminPassword
	}
	if conf.Store.SystemName != "" {
		opts.SystemName = conf.Store.SystemName
	}
	return opts
}

func NewStore(backend Backend, logger core.Logger, opts Options) *Store {
	validate, translator := core.NewValidator()
	return &Store{
		backend:    backend,
		logger:     logger,
		opts:       opts,
		validate:   validate,
		translator: translator,
	}
}

func (s *Store) Options() Options { return s.opts }

// validateStruct runs the validator on data, translating its errors into a *core.ValidationError.
func (s *Store) validateStruct(data interface{}) error {
	if err := s.validate.Struct(data); err != nil {
		return core.TranslateValidationErrors(err, s.translator)
	}
	return nil
}

// nextID returns a creation-timestamp-derived id (unix ms), strictly increasing within the Store.
// Callers must hold s.mu.
func (s *Store) nextID() int64 {
	id := nowFunc().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// load reads the document, creating and saving the default one when absent. Callers must hold s.mu.
func (s *Store) load(ctx context.Context) (*Document, error) {
	data, err := s.backend.Load(ctx, s.opts.DocumentKey)
	if err != nil {
		if errors.Cause(err) != ErrNoDocument {
			return nil, errors.Wrap(err, "loading document")
		}
		s.logger.Info("Initializing document with defaults", map[string]interface{}{"key": s.opts.DocumentKey})
		doc := defaultDocument(s.opts)
		if err = s.save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	doc := new(Document)
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	doc.normalize()
	return doc, nil
}

// save stamps and writes the whole document. Callers must hold s.mu.
func (s *Store) save(ctx context.Context, doc *Document) error {
	doc.LastUpdated = nowFunc().UTC()
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	if err = s.backend.Save(ctx, s.opts.DocumentKey, data); err != nil {
		return errors.Wrap(err, "saving document")
	}
	return nil
}

// update runs fn on the current document and saves it unless fn fails.
// fn may return errNoChange to skip the write without reporting an error.
func (s *Store) update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err = fn(doc); err != nil {
		if err == errNoChange {
			return nil
		}
		return err
	}
	return s.save(ctx, doc)
}

// view runs fn on the current document without saving it.
func (s *Store) view(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// emptyDocument is the skeleton of a document holding no data.
func emptyDocument(opts Options) *Document {
	return &Document{
		Version:     DocumentVersion,
		LastUpdated: nowFunc().UTC(),
		Users:       []User{},
		Classes:     map[string]*ClassRecord{},
		AIKnowledge: Knowledge{},
		System: System{
			AdminPassword: opts.AdminPassword,
			SystemName:    opts.SystemName,
		},
		Settings: Settings{Theme: "light", Language: "en", Notifications: true},
		Logs:     []LogEntry{},
	}
}

// defaultDocument is the document created on first use.
func defaultDocument(opts Options) *Document {
	doc := emptyDocument(opts)
	doc.AIKnowledge = defaultKnowledge()
	return doc
}

// normalize replaces nil collections so the document encodes with empty arrays & objects.
func (doc *Document) normalize() {
	if doc.Users == nil {
		doc.Users = []User{}
	}
	for i := range doc.Users {
		if doc.Users[i].TasksCompleted == nil {
			doc.Users[i].TasksCompleted = []int64{}
		}
	}
	if doc.Classes == nil {
		doc.Classes = map[string]*ClassRecord{}
	}
	for name, class := range doc.Classes {
		if class == nil {
			class = &ClassRecord{Name: name}
			doc.Classes[name] = class
		}
		class.normalize()
	}
	if doc.AIKnowledge == nil {
		doc.AIKnowledge = Knowledge{}
	}
	if doc.Logs == nil {
		doc.Logs = []LogEntry{}
	}
}

func (c *ClassRecord) normalize() {
	if c.Students == nil {
		c.Students = []StudentEntry{}
	}
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	for i := range c.Tasks {
		if c.Tasks[i].CompletedBy == nil {
			c.Tasks[i].CompletedBy = []int64{}
		}
	}
	if c.Schedule == nil {
		c.Schedule = []ScheduleEntry{}
	}
}

// userIndex returns the position of the user with id in doc.Users, or -1.
func (doc *Document) userIndex(id int64) int {
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (doc *Document) loginTaken(login string, exclID int64) bool {
	for _, usr := range doc.Users {
		if usr.Login == login && usr.ID != exclID {
			return true
		}
	}
	return false
}

// ensureClass returns the class record named name, creating it if absent.
func (doc *Document) ensureClass(name string) *ClassRecord {
	class, ok := doc.Classes[name]
	if !ok {
		class = &ClassRecord{Name: name}
		class.normalize()
		doc.Classes[name] = class
	}
	return class
}

// classNames returns class names in a stable (sorted) order.
func (doc *Document) classNames() []string {
	names := make([]string, 0, len(doc.Classes))
	for name := range doc.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findTask scans every class task list, in class name order, and returns the first task with id.
func (doc *Document) findTask(id int64) (*ClassRecord, *Task) {
	for _, name := range doc.classNames() {
		class := doc.Classes[name]
		for i := range class.Tasks {
			if class.Tasks[i].ID == id {
				return class, &class.Tasks[i]
			}
		}
	}
	return nil, nil
}

// syncStudent writes the display fields of a student into its class student list.
func (doc *Document) syncStudent(usr User) {
	if usr.Class == "" || !usr.IsStudent() {
		return
	}
	class := doc.ensureClass(usr.Class)
	for i := range class.Students {
		if class.Students[i].ID == usr.ID {
			class.Students[i] = usr.studentEntry()
			return
		}
	}
	class.Students = append(class.Students, usr.studentEntry())
}

// removeStudent drops the user with id from the student list of className.
func (doc *Document) removeStudent(className string, id int64) {
	class, ok := doc.Classes[className]
	if !ok {
		return
	}
	for i := range class.Students {
		if class.Students[i].ID == id {
			class.Students = append(class.Students[:i], class.Students[i+1:]...)
			return
		}
	}
}

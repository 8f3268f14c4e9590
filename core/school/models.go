package school

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/classpoint/assistant/core"
)

const DocumentVersion = "1.0"

// Roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Log types & levels
const (
	LogTypeAuth      = "auth"
	LogTypeUser      = "user"
	LogTypeTask      = "task"
	LogTypeKnowledge = "knowledge"
	LogTypeSystem    = "system"

	LogLevelInfo    = "info"
	LogLevelSuccess = "success"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// TasksPerLevel is the number of completed tasks needed to reach the next level.
const TasksPerLevel = 5

// Document is the single JSON document holding all persisted application state.
type Document struct {
	Version     string                  `json:"version"`
	LastUpdated time.Time               `json:"lastUpdated"`
	Users       []User                  `json:"users"`
	Classes     map[string]*ClassRecord `json:"classes"`
	AIKnowledge Knowledge               `json:"ai_knowledge"`
	System      System                  `json:"system"`
	Settings    Settings                `json:"settings"`
	Logs        []LogEntry              `json:"logs"`
}

type User struct {
	ID             int64      `json:"id"`
	Login          string     `json:"login"`
	Password       string     `json:"password,omitempty"`
	Name           string     `json:"name"`
	Avatar         string     `json:"avatar"`
	Class          string     `json:"class"`
	Role           string     `json:"role"`
	Points         int        `json:"points"`
	Level          int        `json:"level"`
	TasksCompleted []int64    `json:"tasks_completed"`
	CreatedAt      time.Time  `json:"created_at"` // UTC
	LastLogin      *time.Time `json:"last_login"` // UTC
	IsActive       bool       `json:"is_active"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// HasCompleted reports whether taskID is in the user's completed tasks.
func (u *User) HasCompleted(taskID int64) bool {
	return containsID(u.TasksCompleted, taskID)
}

// public returns a copy of the user without its password.
func (u User) public() User {
	u.Password = ""
	u.TasksCompleted = append(make([]int64, 0, len(u.TasksCompleted)), u.TasksCompleted...)
	return u
}

func (u User) studentEntry() StudentEntry {
	return StudentEntry{ID: u.ID, Name: u.Name, Points: u.Points, Avatar: u.Avatar}
}

// ClassRecord groups students, tasks and schedule under a class name.
type ClassRecord struct {
	Name     string          `json:"name"`
	Students []StudentEntry  `json:"students"`
	Tasks    []Task          `json:"tasks"`
	Schedule []ScheduleEntry `json:"schedule"`
}

// StudentEntry is the copy of a user's display fields kept in its class.
type StudentEntry struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Avatar string `json:"avatar"`
}

type Task struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedBy []int64   `json:"completed_by"`
	IsActive    bool      `json:"is_active"`
}

// IsCompletedBy reports whether userID already completed the task.
func (t *Task) IsCompletedBy(userID int64) bool {
	return containsID(t.CompletedBy, userID)
}

type ScheduleEntry struct {
	ID      int64  `json:"id"`
	Day     string `json:"day"`
	Time    string `json:"time"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
}

type System struct {
	AdminPassword string `json:"admin_password"`
	TotalLogins   int    `json:"total_logins"`
	SystemName    string `json:"system_name"`
}

type Settings struct {
	Theme         string `json:"theme" validate:"omitempty,oneof=light dark"`
	Language      string `json:"language" validate:"omitempty,len=2"`
	Notifications bool   `json:"notifications"`
	AutoBackup    bool   `json:"auto_backup"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Login           string `json:"login" validate:"required,max=64,login"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=Password"`
	Name            string `json:"name" validate:"required,notblank"`
	Class           string `json:"class" validate:"required_if=Role student"`
	Role            string `json:"role" validate:"oneof=admin student"`
}

func (nu *NewUser) Clean() {
	nu.Login = core.CleanString(nu.Login, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Class = core.CleanString(nu.Class)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil fields are left untouched.
type UpdateUser struct {
	Login    *string `json:"login" validate:"omitnil,max=64,login"`
	Password *string `json:"password" validate:"omitnil,notblank"`
	Name     *string `json:"name" validate:"omitnil,notblank"`
	Class    *string `json:"class"`
	Role     *string `json:"role" validate:"omitnil,oneof=admin student"`
	Points   *int    `json:"points" validate:"omitnil,min=0"`
	IsActive *bool   `json:"is_active"`
}

func (uu *UpdateUser) Clean() {
	clean := func(s *string, lower bool) {
		if s != nil {
			*s = core.CleanString(*s, lower)
		}
	}
	clean(uu.Login, true)
	clean(uu.Name, false)
	clean(uu.Class, false)
	clean(uu.Role, true)
}

// NewTask contains information needed to add a Task to a class.
type NewTask struct {
	Class       string `json:"class" validate:"required,notblank"`
	Subject     string `json:"subject" validate:"required,notblank"`
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"oneof=low medium high"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (nt *NewTask) Clean() {
	nt.Class = core.CleanString(nt.Class)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	nt.DueDate = core.CleanString(nt.DueDate)
}

// NewScheduleEntry contains information needed to add a lesson to a class schedule.
type NewScheduleEntry struct {
	Day     string `json:"day" validate:"oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Subject string `json:"subject" validate:"required,notblank"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

func (ns *NewScheduleEntry) Clean() {
	ns.Day = core.CleanString(ns.Day, true /* lower */)
	ns.Time = core.CleanString(ns.Time)
	ns.Subject = core.CleanString(ns.Subject)
	ns.Teacher = core.CleanString(ns.Teacher)
	ns.Room = core.CleanString(ns.Room)
}

type UserFilter struct {
	Class  string `query:"class"`
	Role   string `query:"role"`
	Search string `query:"search"` // case-insensitive match on login or name
}

func (uf *UserFilter) match(usr User) bool {
	if uf.Class != "" && usr.Class != uf.Class {
		return false
	}
	if uf.Role != "" && usr.Role != uf.Role {
		return false
	}
	if search := strings.ToLower(core.CleanString(uf.Search)); search != "" {
		return strings.Contains(strings.ToLower(usr.Login), search) ||
			strings.Contains(strings.ToLower(usr.Name), search)
	}
	return true
}

// Avatar derives the initials shown in place of a picture: the first letter of the first two words of name.
func Avatar(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}
	if len(words) > 2 {
		words = words[:2]
	}
	initials := make([]rune, 0, len(words))
	for _, word := range words {
		r, _ := utf8.DecodeRuneInString(word)
		initials = append(initials, unicode.ToUpper(r))
	}
	return string(initials)
}

// LevelFor returns the level reached after completing n tasks.
func LevelFor(n int) int {
	return n/TasksPerLevel + 1
}

func containsID(ids []int64, id int64) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

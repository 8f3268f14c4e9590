package school

import (
	"context"
	"fmt"

	"github.com/classpoint/assistant/core"
)

// AddTask adds a task to its class, creating the class if absent.
func (s *Store) AddTask(ctx context.Context, nt NewTask) (Task, error) {
	nt.Clean()
	if err := s.validateStruct(nt); err != nil {
		return Task{}, err
	}

	var task Task
	err := s.update(ctx, func(doc *Document) error {
		task = Task{
			ID:          s.nextID(),
			Subject:     nt.Subject,
			Title:       nt.Title,
			Description: nt.Description,
			Priority:    nt.Priority,
			DueDate:     nt.DueDate,
			CreatedAt:   nowFunc().UTC(),
			CompletedBy: []int64{},
			IsActive:    true,
		}
		class := doc.ensureClass(nt.Class)
		class.Tasks = append(class.Tasks, task)
		s.appendLog(doc, "admin", fmt.Sprintf("task %q added to %s", task.Title, class.Name), LogTypeTask, LogLevelInfo)
		return nil
	})
	return task, err
}

// ListTasks returns the tasks of class, in creation order.
func (s *Store) ListTasks(ctx context.Context, class string) ([]Task, error) {
	var tasks []Task
	err := s.view(ctx, func(doc *Document) error {
		rec, ok := doc.Classes[core.CleanString(class)]
		if !ok {
			return ErrClassNotFound
		}
		tasks = make([]Task, len(rec.Tasks))
		copy(tasks, rec.Tasks)
		return nil
	})
	return tasks, err
}

func (s *Store) GetTask(ctx context.Context, id int64) (Task, error) {
	var task Task
	err := s.view(ctx, func(doc *Document) error {
		_, t := doc.findTask(id)
		if t == nil {
			return ErrTaskNotFound
		}
		task = *t
		return nil
	})
	return task, err
}

// SetTaskActive shows or hides a task; inactive tasks cannot be completed.
func (s *Store) SetTaskActive(ctx context.Context, id int64, active bool) (Task, error) {
	var task Task
	err := s.update(ctx, func(doc *Document) error {
		_, t := doc.findTask(id)
		if t == nil {
			return ErrTaskNotFound
		}
		t.IsActive = active
		task = *t
		return nil
	})
	return task, err
}

// DeleteTask removes a task from its class. Users keep it in their completed tasks.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.update(ctx, func(doc *Document) error {
		class, _ := doc.findTask(id)
		if class == nil {
			return ErrTaskNotFound
		}
		for i := range class.Tasks {
			if class.Tasks[i].ID == id {
				s.appendLog(doc, "admin", fmt.Sprintf("task %q deleted from %s", class.Tasks[i].Title, class.Name), LogTypeTask, LogLevelWarning)
				class.Tasks = append(class.Tasks[:i], class.Tasks[i+1:]...)
				break
			}
		}
		return nil
	})
}

// CompleteTask marks the task as completed by the user and awards PointsPerTask.
// Completing the same task again changes nothing and returns completed == false.
func (s *Store) CompleteTask(ctx context.Context, userID, taskID int64) (usr User, completed bool, err error) {
	err = s.update(ctx, func(doc *Document) error {
		idx := doc.userIndex(userID)
		if idx < 0 {
			return ErrNotFound
		}
		_, task := doc.findTask(taskID)
		if task == nil {
			return ErrTaskNotFound
		}
		if task.IsCompletedBy(userID) {
			usr = doc.Users[idx]
			return errNoChange
		}
		if !task.IsActive {
			return core.NewValidationError(ErrTaskInactive)
		}

		task.CompletedBy = append(task.CompletedBy, userID)
		u := &doc.Users[idx]
		if !u.HasCompleted(taskID) {
			u.TasksCompleted = append(u.TasksCompleted, taskID)
		}
		u.Points += s.opts.PointsPerTask
		u.Level = LevelFor(len(u.TasksCompleted))
		doc.syncStudent(*u)

		usr = *u
		completed = true
		s.appendLog(doc, u.Login, fmt.Sprintf("completed task %q (+%d points)", task.Title, s.opts.PointsPerTask), LogTypeTask, LogLevelSuccess)
		return nil
	})
	if err != nil {
		return User{}, false, err
	}
	return usr.public(), completed, nil
}

package school

import (
	"context"

	"github.com/classpoint/assistant/core"
)

// Register creates a student or admin account, adding students to their class (created if absent).
func (s *Store) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := s.validateStruct(nu); err != nil {
		return User{}, err
	}

	var usr User
	err := s.update(ctx, func(doc *Document) error {
		if doc.loginTaken(nu.Login, 0) {
			return core.NewValidationError(ErrDuplicateLogin, core.FieldError{Field: "login", Error: ErrDuplicateLogin.Error()})
		}

		usr = User{
			ID:             s.nextID(),
			Login:          nu.Login,
			Password:       nu.Password,
			Name:           nu.Name,
			Avatar:         Avatar(nu.Name),
			Class:          nu.Class,
			Role:           nu.Role,
			Points:         0,
			Level:          1,
			TasksCompleted: []int64{},
			CreatedAt:      nowFunc().UTC(),
			IsActive:       false,
		}
		doc.Users = append(doc.Users, usr)
		doc.syncStudent(usr)
		s.appendLog(doc, usr.Login, "registered ("+usr.Role+")", LogTypeUser, LogLevelSuccess)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return usr.public(), nil
}

// Login returns the user matching login and password, marking them active.
// ErrNotFound is returned on any mismatch.
func (s *Store) Login(ctx context.Context, login, pwd string) (User, error) {
	login = core.CleanString(login, true /* lower */)

	var usr User
	err := s.update(ctx, func(doc *Document) error {
		for i := range doc.Users {
			if doc.Users[i].Login != login || doc.Users[i].Password != pwd {
				continue
			}
			now := nowFunc().UTC()
			doc.Users[i].LastLogin = &now
			doc.Users[i].IsActive = true
			doc.System.TotalLogins++
			usr = doc.Users[i]
			s.appendLog(doc, usr.Login, "logged in", LogTypeAuth, LogLevelInfo)
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return User{}, err
	}
	return usr.public(), nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var usr User
	err := s.view(ctx, func(doc *Document) error {
		idx := doc.userIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		usr = doc.Users[idx].public()
		return nil
	})
	return usr, err
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (User, error) {
	login = core.CleanString(login, true /* lower */)

	var usr User
	err := s.view(ctx, func(doc *Document) error {
		for _, u := range doc.Users {
			if u.Login == login {
				usr = u.public()
				return nil
			}
		}
		return ErrNotFound
	})
	return usr, err
}

// ListUsers returns the users matching filter, in registration order.
func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	users := make([]User, 0)
	err := s.view(ctx, func(doc *Document) error {
		for _, usr := range doc.Users {
			if filter.match(usr) {
				users = append(users, usr.public())
			}
		}
		return nil
	})
	return users, err
}

// UpdateUser merges the set fields of uu into the user with id and rewrites its class student entry.
func (s *Store) UpdateUser(ctx context.Context, id int64, uu UpdateUser) (User, error) {
	uu.Clean()
	if err := s.validateStruct(uu); err != nil {
		return User{}, err
	}

	var usr User
	err := s.update(ctx, func(doc *Document) error {
		idx := doc.userIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		orig := doc.Users[idx]
		usr = orig

		if uu.Login != nil {
			if doc.loginTaken(*uu.Login, id) {
				return core.NewValidationError(ErrDuplicateLogin, core.FieldError{Field: "login", Error: ErrDuplicateLogin.Error()})
			}
			usr.Login = *uu.Login
		}
		if uu.Password != nil {
			usr.Password = *uu.Password
		}
		if uu.Name != nil {
			usr.Name = *uu.Name
			usr.Avatar = Avatar(usr.Name)
		}
		if uu.Class != nil {
			usr.Class = *uu.Class
		}
		if uu.Role != nil {
			usr.Role = *uu.Role
		}
		if uu.Points != nil {
			usr.Points = *uu.Points
		}
		if uu.IsActive != nil {
			usr.IsActive = *uu.IsActive
		}
		if usr.IsStudent() && usr.Class == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "class", Error: "this field is required"})
		}

		if orig.Class != usr.Class || orig.Role != usr.Role {
			doc.removeStudent(orig.Class, id)
		}
		doc.Users[idx] = usr
		doc.syncStudent(usr)
		s.appendLog(doc, usr.Login, "profile updated", LogTypeUser, LogLevelInfo)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return usr.public(), nil
}

// DeleteUser removes the user with id and its class student entry.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.update(ctx, func(doc *Document) error {
		idx := doc.userIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		usr := doc.Users[idx]
		doc.Users = append(doc.Users[:idx], doc.Users[idx+1:]...)
		doc.removeStudent(usr.Class, id)
		s.appendLog(doc, usr.Login, "account deleted", LogTypeUser, LogLevelWarning)
		return nil
	})
}

// ResetPassword replaces the password of the user with login.
func (s *Store) ResetPassword(ctx context.Context, login, pwd string) error {
	login = core.CleanString(login, true /* lower */)
	if pwd == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
	}
	return s.update(ctx, func(doc *Document) error {
		for i := range doc.Users {
			if doc.Users[i].Login == login {
				doc.Users[i].Password = pwd
				s.appendLog(doc, login, "password reset", LogTypeAuth, LogLevelWarning)
				return nil
			}
		}
		return ErrNotFound
	})
}

package fakeuserrepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = users.NormaliseEmail(user.Email)
	if previous, ok := ur.users[user.ID]; ok && previous.Email != user.Email {
		delete(ur.emailIds, previous.Email)
	}
	ur.users[user.ID] = user
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email = users.NormaliseEmail(email)
	userID, ok := ur.emailIds[email]
	if !ok {
		return campuserrors.ErrUserNotFound
	}
	delete(ur.emailIds, email)
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[users.NormaliseEmail(email)]
	if !ok {
		return nil, campuserrors.ErrUserNotFound
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, campuserrors.ErrUserNotFound
	}
	return user, nil
}

func (ur *FakeUserRepo) List(offset, limit int) (users.UsersListResponse, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(userList) {
		return users.UsersListResponse{Users: []*users.User{}, Total: len(userList), Offset: offset, Limit: limit}, nil
	}

	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return users.UsersListResponse{
		Users:  userList[offset:end],
		Total:  len(userList),
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (ur *FakeUserRepo) SetLoggedIn(email string, loggedIn bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[users.NormaliseEmail(email)]
	if !ok {
		return campuserrors.ErrUserNotFound
	}
	ur.users[id].LoggedIn = loggedIn
	return nil
}

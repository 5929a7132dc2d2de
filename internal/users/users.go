// Package users manages the global user directory and each user's key
// namespace.
package users

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/storage"
)

// Info is the public view of a directory entry.
type Info struct {
	Username   string
	Name       string
	Role       model.Role
	Registered string // as stored under userRegDate_<username>
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Directory) { d.log = l.Named("users") }
}

// WithClock sets the source of registration dates.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option {
	return func(d *Directory) { d.cost = cost }
}

// Directory reads and writes the users key.
type Directory struct {
	store storage.Store
	log   *logging.Logger
	now   func() time.Time
	cost  int
}

// NewDirectory returns a Directory backed by store.
func NewDirectory(store storage.Store, opts ...Option) *Directory {
	d := &Directory{
		store: store,
		log:   logging.NewNoOpLogger(),
		now:   time.Now,
		cost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registration is the input to Register.
type Registration struct {
	Username string
	Name     string // defaults to Username
	Password string
	Confirm  string
	Role     model.Role // defaults to normal; ignored for the first user
}

// Register adds a user. The first user ever registered becomes admin.
func (d *Directory) Register(ctx context.Context, r Registration) (Info, error) {
	username, err := checkUsername(r.Username)
	if err != nil {
		return Info{}, err
	}
	if r.Password == "" {
		return Info{}, ErrEmptyPassword
	}
	if r.Password != r.Confirm {
		return Info{}, ErrPasswordMismatch
	}
	role := r.Role
	if role == "" {
		role = model.RoleNormal
	}
	if !role.Valid() {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	all, err := d.load(ctx)
	if err != nil {
		return Info{}, err
	}
	if _, ok := all[username]; ok {
		return Info{}, fmt.Errorf("%w: %s", ErrDuplicateUser, username)
	}
	if len(all) == 0 {
		role = model.RoleAdmin
	}

	hash, err := d.hash(r.Password)
	if err != nil {
		return Info{}, err
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = username
	}
	all[username] = model.User{Name: name, Role: role, Password: hash}
	registered := model.DateOf(d.now()).String()

	b := storage.NewBatch()
	if err := setUsers(b, all); err != nil {
		return Info{}, err
	}
	b.Set(storage.RegDateKey(username), []byte(registered))
	if err := d.store.Apply(ctx, b); err != nil {
		return Info{}, fmt.Errorf("registering %s: %w", username, err)
	}

	d.log.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return Info{Username: username, Name: name, Role: role, Registered: registered}, nil
}

// Authenticate checks a password and returns the session context. Entries
// stored before hashing was introduced are compared as plain text and
// upgraded to a hash on success.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (ledger.UserContext, error) {
	all, err := d.load(ctx)
	if err != nil {
		return ledger.UserContext{}, err
	}
	u, ok := all[username]
	if !ok {
		return ledger.UserContext{}, ErrInvalidCredentials
	}

	if isHash(u.Password) {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return ledger.UserContext{}, ErrInvalidCredentials
		}
	} else {
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return ledger.UserContext{}, ErrInvalidCredentials
		}
		if err := d.upgradePassword(ctx, all, username, password); err != nil {
			d.log.Warn("password upgrade failed", zap.String("username", username), zap.Error(err))
		}
	}
	return ledger.UserContext{Username: username, Role: u.Role}, nil
}

func (d *Directory) upgradePassword(ctx context.Context, all map[string]model.User, username, password string) error {
	hash, err := d.hash(password)
	if err != nil {
		return err
	}
	u := all[username]
	u.Password = hash
	all[username] = u
	b := storage.NewBatch()
	if err := setUsers(b, all); err != nil {
		return err
	}
	return d.store.Apply(ctx, b)
}

// Get returns one user.
func (d *Directory) Get(ctx context.Context, username string) (Info, error) {
	all, err := d.load(ctx)
	if err != nil {
		return Info{}, err
	}
	u, ok := all[username]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	reg, err := d.RegistrationDate(ctx, username)
	if err != nil {
		return Info{}, err
	}
	return Info{Username: username, Name: u.Name, Role: u.Role, Registered: reg}, nil
}

// List returns every user sorted by username.
func (d *Directory) List(ctx context.Context) ([]Info, error) {
	all, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Info, 0, len(names))
	for _, name := range names {
		reg, err := d.RegistrationDate(ctx, name)
		if err != nil {
			return nil, err
		}
		u := all[name]
		out = append(out, Info{Username: name, Name: u.Name, Role: u.Role, Registered: reg})
	}
	return out, nil
}

// RegistrationDate returns the stored registration date, or "" when none
// was recorded.
func (d *Directory) RegistrationDate(ctx context.Context, username string) (string, error) {
	raw, err := d.store.Get(ctx, storage.RegDateKey(username))
	if storage.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading registration date: %w", err)
	}
	return string(raw), nil
}

// Update is the input to Directory.Update. Empty Name and Role keep the
// current values; an empty Password keeps the current password.
type Update struct {
	NewUsername string
	Name        string
	Role        model.Role
	Password    string
	Confirm     string
}

// Update edits a user. Renaming moves every namespaced key of the old
// username to the new one; the move and the directory change are applied
// as one batch.
func (d *Directory) Update(ctx context.Context, actor ledger.UserContext, username string, u Update) (Info, error) {
	if !actor.IsAdmin() {
		return Info{}, ErrForbidden
	}
	newUsername, err := checkUsername(u.NewUsername)
	if err != nil {
		return Info{}, err
	}
	if u.Password != "" && u.Password != u.Confirm {
		return Info{}, ErrPasswordMismatch
	}
	if u.Role != "" && !u.Role.Valid() {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}

	all, err := d.load(ctx)
	if err != nil {
		return Info{}, err
	}
	entry, ok := all[username]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	rename := newUsername != username
	if _, taken := all[newUsername]; rename && taken {
		return Info{}, fmt.Errorf("%w: %s", ErrDuplicateUser, newUsername)
	}

	if u.Password != "" {
		if entry.Password, err = d.hash(u.Password); err != nil {
			return Info{}, err
		}
	}
	if u.Role != "" {
		entry.Role = u.Role
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		entry.Name = name
	}

	b := storage.NewBatch()
	if rename {
		if err := d.queueMove(ctx, b, username, newUsername); err != nil {
			return Info{}, err
		}
		delete(all, username)
	}
	all[newUsername] = entry
	if err := setUsers(b, all); err != nil {
		return Info{}, err
	}
	if err := d.store.Apply(ctx, b); err != nil {
		return Info{}, fmt.Errorf("updating %s: %w", username, err)
	}

	d.log.Info("user updated",
		zap.String("username", username),
		zap.String("new_username", newUsername),
		zap.String("actor", actor.Username))
	reg, err := d.RegistrationDate(ctx, newUsername)
	if err != nil {
		return Info{}, err
	}
	return Info{Username: newUsername, Name: entry.Name, Role: entry.Role, Registered: reg}, nil
}

// queueMove copies each existing namespaced key of from, backups included, to
// the matching key of to and removes the original.
func (d *Directory) queueMove(ctx context.Context, b *storage.Batch, from, to string) error {
	oldKeys := append(storage.UserKeys(from), storage.BackupKeys(from)...)
	newKeys := append(storage.UserKeys(to), storage.BackupKeys(to)...)
	for i, oldKey := range oldKeys {
		raw, err := d.store.Get(ctx, oldKey)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", oldKey, err)
		}
		b.Remove(oldKey)
		b.Set(newKeys[i], raw)
	}
	return nil
}

// Delete removes a user and every namespaced key it owns.
func (d *Directory) Delete(ctx context.Context, actor ledger.UserContext, username string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if username == actor.Username {
		return ErrDeleteSelf
	}
	all, err := d.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[username]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	delete(all, username)

	b := storage.NewBatch()
	for _, key := range append(storage.UserKeys(username), storage.BackupKeys(username)...) {
		b.Remove(key)
	}
	if err := setUsers(b, all); err != nil {
		return err
	}
	if err := d.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("deleting %s: %w", username, err)
	}
	d.log.Info("user deleted", zap.String("username", username), zap.String("actor", actor.Username))
	return nil
}

func (d *Directory) load(ctx context.Context) (map[string]model.User, error) {
	raw, err := d.store.Get(ctx, storage.UsersKey)
	if storage.IsNotFound(err) {
		return map[string]model.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	var all map[string]model.User
	if err := json.Unmarshal(raw, &all); err != nil {
		d.log.Warn("discarding undecodable user directory", zap.Error(err))
		return map[string]model.User{}, nil
	}
	if all == nil {
		all = map[string]model.User{}
	}
	return all, nil
}

func setUsers(b *storage.Batch, all map[string]model.User) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}
	b.Set(storage.UsersKey, raw)
	return nil
}

func (d *Directory) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

func isHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func checkUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrEmptyUsername
	}
	if err := storage.ValidateUsername(username); err != nil {
		return "", errors.Join(model.ErrValidation, err)
	}
	return username, nil
}

package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUserRepo is an in-memory UserRepository keyed by uid.
type memUserRepo struct {
	mu      sync.Mutex
	byUID   map[string]*models.User
	inserts int

	// failWith, when set, is returned by every call.
	failWith error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byUID: make(map[string]*models.User)}
}

func (r *memUserRepo) add(users ...*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.byUID[u.UID] = u
	}
}

func strip(u *models.User) *models.User {
	cp := *u
	cp.Password = ""
	cp.ResetPasswordToken = ""
	cp.ResetPasswordExpire = nil
	return &cp
}

func (r *memUserRepo) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, u := range r.byUID {
		if u.Email == user.Email || u.UID == user.UID {
			return ErrDuplicateKey
		}
	}
	cp := *user
	r.byUID[user.UID] = &cp
	r.inserts++
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string, withSecret bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.byUID {
		if u.Email == email {
			if withSecret {
				cp := *u
				return &cp, nil
			}
			return strip(u), nil
		}
	}
	return nil, ErrDocumentNotFound
}

func (r *memUserRepo) FindByUID(_ context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.byUID[uid]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return strip(u), nil
}

func (r *memUserRepo) FindPublicByUIDs(_ context.Context, uids []string) ([]models.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PublicUser{}
	for _, uid := range uids {
		if u, ok := r.byUID[uid]; ok {
			out = append(out, u.Public())
		}
	}
	return out, nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, uid, tokenHash string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUID[uid]
	if !ok {
		return ErrDocumentNotFound
	}
	u.ResetPasswordToken = tokenHash
	u.ResetPasswordExpire = &expire
	return nil
}

func (r *memUserRepo) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byUID {
		if u.ResetPasswordToken == tokenHash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			u.Password = passwordHash
			u.ResetPasswordToken = ""
			u.ResetPasswordExpire = nil
			return strip(u), nil
		}
	}
	return nil, ErrDocumentNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, uid string, upd ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUID[uid]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	return strip(u), nil
}

// memFollowStore is an in-memory FollowStore preserving insertion order.
type memFollowStore struct {
	mu    sync.Mutex
	seq   int
	edges map[[2]string]int
}

func newMemFollowStore() *memFollowStore {
	return &memFollowStore{edges: make(map[[2]string]int)}
}

func (s *memFollowStore) Add(_ context.Context, follower, following string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{follower, following}
	if _, ok := s.edges[key]; ok {
		return false, nil
	}
	s.seq++
	s.edges[key] = s.seq
	return true, nil
}

func (s *memFollowStore) Remove(_ context.Context, follower, following string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{follower, following}
	if _, ok := s.edges[key]; !ok {
		return false, nil
	}
	delete(s.edges, key)
	return true, nil
}

func (s *memFollowStore) Exists(_ context.Context, follower, following string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[[2]string{follower, following}]
	return ok, nil
}

func (s *memFollowStore) collect(match func(k [2]string) (string, bool)) []string {
	type row struct {
		id  string
		seq int
	}
	var rows []row
	for k, seq := range s.edges {
		if id, ok := match(k); ok {
			rows = append(rows, row{id, seq})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := []string{}
	for _, r := range rows {
		out = append(out, r.id)
	}
	return out
}

func (s *memFollowStore) Followers(_ context.Context, uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(k [2]string) (string, bool) { return k[0], k[1] == uid }), nil
}

func (s *memFollowStore) Following(_ context.Context, uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(k [2]string) (string, bool) { return k[1], k[0] == uid }), nil
}

func (s *memFollowStore) Counts(ctx context.Context, uid string) (models.RelationCounts, error) {
	followers, _ := s.Followers(ctx, uid)
	following, _ := s.Following(ctx, uid)
	return models.RelationCounts{Followers: int64(len(followers)), Following: int64(len(following))}, nil
}

// recordingPublisher captures published notifications.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) all() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.sent...)
}

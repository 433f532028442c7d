package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodieshare/foodieshare-backend/internal/models"
)

const (
	FollowedMessage   = "Successfully followed user"
	UnfollowedMessage = "Successfully unfollowed user"
)

// FollowStore holds directed follow edges. PostgresFollowStore is the
// production implementation.
type FollowStore interface {
	Add(ctx context.Context, followerID, followingID string) (bool, error)
	Remove(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Followers(ctx context.Context, uid string) ([]string, error)
	Following(ctx context.Context, uid string) ([]string, error)
	Counts(ctx context.Context, uid string) (models.RelationCounts, error)
}

// NotificationPublisher is satisfied by *NotificationHub.
type NotificationPublisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// FollowRequest names the ordered pair for follow and unfollow.
type FollowRequest struct {
	FollowerID  string
	FollowingID string
}

type FollowService struct {
	users    UserRepository
	edges    FollowStore
	cache    *CacheService
	notifier NotificationPublisher
	logger   *slog.Logger
}

// NewFollowService builds the service. cache and notifier may be nil.
func NewFollowService(users UserRepository, edges FollowStore, cache *CacheService, notifier NotificationPublisher, logger *slog.Logger) *FollowService {
	return &FollowService{
		users:    users,
		edges:    edges,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// GetProfile returns public fields and relation counts.
func (s *FollowService) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	key := profileCacheKey(uid)
	var cached models.Profile
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	// Read before loading so a follow landing mid-read voids the fill.
	version, cacheable := s.cache.Version(ctx, key)

	user, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	counts, err := s.edges.Counts(ctx, uid)
	if err != nil {
		return nil, unexpected("Server error", err)
	}

	profile := &models.Profile{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		PhotoURL:    user.PhotoURL,
		Followers:   counts.Followers,
		Following:   counts.Following,
	}
	if cacheable {
		s.cache.SetIfVersion(ctx, key, profile, version)
	}
	return profile, nil
}

func (s *FollowService) GetFollowers(ctx context.Context, uid string) ([]models.PublicUser, error) {
	return s.relationList(ctx, uid, s.edges.Followers)
}

func (s *FollowService) GetFollowing(ctx context.Context, uid string) ([]models.PublicUser, error) {
	return s.relationList(ctx, uid, s.edges.Following)
}

func (s *FollowService) relationList(ctx context.Context, uid string, ids func(context.Context, string) ([]string, error)) ([]models.PublicUser, error) {
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	uids, err := ids(ctx, uid)
	if err != nil {
		return nil, unexpected("Server error", err)
	}
	users, err := s.users.FindPublicByUIDs(ctx, uids)
	if err != nil {
		return nil, unexpected("Server error", err)
	}
	return users, nil
}

// Follow records that req.FollowerID follows req.FollowingID on behalf of
// the authenticated actor. An empty FollowerID means the actor.
func (s *FollowService) Follow(ctx context.Context, actorID string, req FollowRequest) error {
	follower, following, err := s.resolvePair(ctx, actorID, &req)
	if err != nil {
		return err
	}

	created, err := s.edges.Add(ctx, req.FollowerID, req.FollowingID)
	if err != nil {
		return unexpected("Server error", err)
	}
	if !created {
		return ErrAlreadyFollowing
	}
	s.invalidate(ctx, req.FollowerID, req.FollowingID)

	s.logger.Info("user followed", "follower", req.FollowerID, "following", req.FollowingID)
	s.notifyFollow(ctx, follower, following)
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, actorID string, req FollowRequest) error {
	if _, _, err := s.resolvePair(ctx, actorID, &req); err != nil {
		return err
	}

	removed, err := s.edges.Remove(ctx, req.FollowerID, req.FollowingID)
	if err != nil {
		return unexpected("Server error", err)
	}
	if !removed {
		return ErrNotFollowing
	}
	s.invalidate(ctx, req.FollowerID, req.FollowingID)

	s.logger.Info("user unfollowed", "follower", req.FollowerID, "following", req.FollowingID)
	return nil
}

// IsFollowing reports whether followerID follows followingID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := s.edges.Exists(ctx, followerID, followingID)
	if err != nil {
		return false, unexpected("Server error", err)
	}
	return ok, nil
}

// UpdateProfile changes displayName and photoURL. Empty values leave the
// stored field untouched.
func (s *FollowService) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*models.AccountView, error) {
	if upd.DisplayName != nil {
		trimmed := strings.TrimSpace(*upd.DisplayName)
		upd.DisplayName = &trimmed
		if trimmed == "" {
			upd.DisplayName = nil
		}
	}
	if upd.PhotoURL != nil && strings.TrimSpace(*upd.PhotoURL) == "" {
		upd.PhotoURL = nil
	}

	user, err := s.users.UpdateProfile(ctx, uid, upd)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, unexpected("Server error", err)
	}
	s.invalidate(ctx, uid)

	view := user.Account()
	return &view, nil
}

func (s *FollowService) resolvePair(ctx context.Context, actorID string, req *FollowRequest) (*models.User, *models.User, error) {
	req.FollowerID = strings.TrimSpace(req.FollowerID)
	req.FollowingID = strings.TrimSpace(req.FollowingID)

	if req.FollowerID == "" {
		req.FollowerID = actorID
	}
	if req.FollowingID == "" {
		return nil, nil, validationError("Please provide followingId")
	}
	if req.FollowerID != actorID {
		return nil, nil, ErrActingForOtherUser
	}
	if req.FollowerID == req.FollowingID {
		return nil, nil, ErrSelfFollow
	}

	follower, err := s.users.FindByUID(ctx, req.FollowerID)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return nil, nil, unexpected("Server error", err)
	}
	following, err2 := s.users.FindByUID(ctx, req.FollowingID)
	if err2 != nil && !errors.Is(err2, ErrDocumentNotFound) {
		return nil, nil, unexpected("Server error", err2)
	}
	if follower == nil || following == nil {
		return nil, nil, ErrUsersNotFound
	}
	return follower, following, nil
}

func (s *FollowService) loadUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, unexpected("Server error", err)
	}
	return user, nil
}

func (s *FollowService) invalidate(ctx context.Context, uids ...string) {
	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = profileCacheKey(uid)
	}
	s.cache.Delete(ctx, keys...)
}

func (s *FollowService) notifyFollow(ctx context.Context, follower, following *models.User) {
	if s.notifier == nil {
		return
	}
	n := models.Notification{
		Type:        models.NotificationFollow,
		RecipientID: following.UID,
		ActorID:     follower.UID,
		ActorName:   follower.DisplayName,
		ActorPhoto:  follower.PhotoURL,
		Text:        fmt.Sprintf("%s started following you", follower.DisplayName),
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.logger.Warn("failed to publish follow notification", "recipient", following.UID, "error", err)
	}
}

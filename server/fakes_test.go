package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"melodify/config"
	"melodify/core/auth"
	"melodify/model"
	"melodify/repository"
	"melodify/storage"
)

type fakeSongRepo struct {
	mu     sync.Mutex
	songs  map[int64]*model.Song
	nextID int64
	err    error
}

func newFakeSongRepo(songs ...model.Song) *fakeSongRepo {
	f := &fakeSongRepo{songs: map[int64]*model.Song{}}
	for i := range songs {
		s := songs[i]
		f.songs[s.ID] = &s
		if s.ID > f.nextID {
			f.nextID = s.ID
		}
	}
	return f
}

func (f *fakeSongRepo) List(context.Context) ([]model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Song{}
	for _, s := range f.songs {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeSongRepo) GetByID(_ context.Context, id int64) (*model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.songs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSongRepo) Create(_ context.Context, song *model.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	song.ID = f.nextID
	cp := *song
	f.songs[song.ID] = &cp
	return nil
}

type likeKey struct {
	user string
	song int64
}

type fakeLikeRepo struct {
	mu     sync.Mutex
	likes  map[likeKey]model.Like
	songs  *fakeSongRepo
	nextID int64
	err    error
}

func newFakeLikeRepo(songs *fakeSongRepo) *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[likeKey]model.Like{}, songs: songs}
}

func (f *fakeLikeRepo) Find(_ context.Context, userID string, songID int64) (*model.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	l, ok := f.likes[likeKey{userID, songID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (f *fakeLikeRepo) Create(_ context.Context, like *model.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey{like.UserID, like.SongID}
	if _, ok := f.likes[k]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	like.ID = f.nextID
	like.CreatedAt = time.Unix(1700000000+f.nextID, 0).UTC()
	f.likes[k] = *like
	return nil
}

func (f *fakeLikeRepo) Delete(_ context.Context, userID string, songID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.likes, likeKey{userID, songID})
	return nil
}

func (f *fakeLikeRepo) CountBySong(_ context.Context, songID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.likes {
		if k.song == songID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikeRepo) ListByUser(ctx context.Context, userID string) ([]model.Like, error) {
	f.mu.Lock()
	var out []model.Like
	for k, l := range f.likes {
		if k.user == userID {
			out = append(out, l)
		}
	}
	f.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	for i := range out {
		if s, err := f.songs.GetByID(ctx, out[i].SongID); err == nil {
			out[i].Song = s
		}
	}
	return out, nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists []model.Playlist
	entries   []model.PlaylistSong
	nextID    int64
}

func (f *fakePlaylistRepo) Create(_ context.Context, p *model.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.playlists = append(f.playlists, *p)
	return nil
}

func (f *fakePlaylistRepo) AddSong(_ context.Context, e *model.PlaylistSong) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakePlaylistRepo) ListByUser(_ context.Context, userID string) ([]model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Playlist{}
	for i := len(f.playlists) - 1; i >= 0; i-- {
		p := f.playlists[i]
		if p.UserID != userID {
			continue
		}
		for _, e := range f.entries {
			if e.PlaylistID == p.ID {
				p.Songs = append(p.Songs, e)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeStore struct {
	mu      sync.Mutex
	uploads []storage.UploadInput
	err     error
}

func (f *fakeStore) Upload(_ context.Context, in storage.UploadInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.uploads = append(f.uploads, in)
	return nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return "http://files.test/" + bucket + "/" + key
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// fakeProvider accepts "token-<userID>" for every registered user.
type fakeProvider struct {
	mu        sync.Mutex
	users     map[string]*model.User // by email
	passwords map[string]string
	revoked   map[string]bool
	getCalls  int
	signOuts  []auth.SignOutScope
	getErr    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		users:     map[string]*model.User{},
		passwords: map[string]string{},
		revoked:   map[string]bool{},
	}
}

func (f *fakeProvider) addUser(id, email, password string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: id, Email: email}
	f.users[email] = u
	f.passwords[email] = password
	return u
}

func (f *fakeProvider) SignUp(_ context.Context, p auth.SignUpParams) (*model.User, error) {
	if len(p.Password) < auth.MinPasswordLength {
		return nil, auth.ErrWeakPassword
	}
	f.mu.Lock()
	_, exists := f.users[p.Email]
	f.mu.Unlock()
	if exists {
		return nil, auth.ErrUserAlreadyExists
	}
	u := f.addUser("user-"+p.Email, p.Email, p.Password)
	u.Username = p.Username
	return u, nil
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*model.Session, *model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, nil, auth.ErrInvalidCredentials
	}
	return &model.Session{AccessToken: "token-" + u.ID, TokenType: "bearer", ExpiresIn: 3600}, u, nil
}

func (f *fakeProvider) ResendVerification(context.Context, string) error { return nil }

func (f *fakeProvider) VerifyEmail(_ context.Context, token string) (*model.User, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &model.User{ID: "u1", Email: "a@x.com"}, nil
}

func (f *fakeProvider) GetUser(_ context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.revoked[token] {
		return nil, auth.ErrInvalidToken
	}
	for _, u := range f.users {
		if token == "token-"+u.ID {
			return u, nil
		}
	}
	return nil, auth.ErrInvalidToken
}

func (f *fakeProvider) SignOut(_ context.Context, token string, scope auth.SignOutScope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, scope)
	f.revoked[token] = true
	return nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

type testEnv struct {
	songs     *fakeSongRepo
	likes     *fakeLikeRepo
	playlists *fakePlaylistRepo
	store     *fakeStore
	provider  *fakeProvider
	handler   *APIHandler
	cfg       *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		ServiceURL:      "http://localhost:8080",
		ServiceKey:      "test",
		AudioBucket:     "audio",
		ReelAudioBucket: "reel-audio",
		CoverBucket:     "covers",
		MaxUploadBytes:  1 << 20,
	}
}

func newTestEnv(songs ...model.Song) *testEnv {
	cfg := testConfig()
	songRepo := newFakeSongRepo(songs...)
	env := &testEnv{
		songs:     songRepo,
		likes:     newFakeLikeRepo(songRepo),
		playlists: &fakePlaylistRepo{},
		store:     &fakeStore{},
		provider:  newFakeProvider(),
		cfg:       cfg,
	}
	env.handler = NewAPIHandler(env.songs, env.likes, env.playlists, env.store, env.provider, cfg)
	env.handler.now = func() time.Time { return time.UnixMilli(1717171717171) }
	return env
}

var errBackend = errors.New("backend unavailable")

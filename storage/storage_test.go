package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	key         string
	contentType string
	body        []byte
	err         error
}

var _ ObjectStore = (*fakeStore)(nil)

func (f *fakeStore) Put(ctx context.Context, key, contentType string, r io.Reader) (*StoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.key, f.contentType, f.body = key, contentType, body
	return &StoredObject{Key: key, URL: f.URL(key)}, nil
}

func (f *fakeStore) URL(key string) string {
	return publicURL("https://cdn.example.org/archive/", key)
}

func TestStandingsArchiver_Archive(t *testing.T) {
	up := &fakeStore{}
	archiver := NewStandingsArchiver(up)
	finished := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	archiver.now = func() time.Time { return finished }

	tournament := &models.Tournament{ID: uuid.New(), Name: "Frühjahr", CurrentRound: 4}
	standings := []models.TournamentStanding{
		{TeamID: uuid.New(), TeamName: "Drachen", TotalPoints: 1200, Rank: 1},
		{TeamID: uuid.New(), TeamName: "Hunde", TotalPoints: 800, Rank: 2},
	}

	url, err := archiver.Archive(context.Background(), tournament, standings)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/archive/tournaments/"+tournament.ID.String()+"/final-standings.json", url)
	assert.Equal(t, "application/json", up.contentType)

	var doc FinalStandingsDocument
	require.NoError(t, json.Unmarshal(up.body, &doc))
	assert.Equal(t, tournament.Name, doc.TournamentName)
	assert.Equal(t, 4, doc.Rounds)
	assert.True(t, finished.Equal(doc.FinishedAt))
	require.Len(t, doc.Standings, 2)
	assert.Equal(t, "Drachen", doc.Standings[0].TeamName)
}

func TestStandingsArchiver_UploadError(t *testing.T) {
	archiver := NewStandingsArchiver(&fakeStore{err: errors.New("bucket gone")})
	_, err := archiver.Archive(context.Background(), &models.Tournament{ID: uuid.New()}, nil)
	assert.EqualError(t, err, "bucket gone")
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://pub.r2.dev", "a/b.json", "https://pub.r2.dev/a/b.json"},
		{"https://pub.r2.dev/", "/a/b.json", "https://pub.r2.dev/a/b.json"},
		{"https://pub.r2.dev/prefix", "a.json", "https://pub.r2.dev/prefix/a.json"},
		{"", "a.json", ""},
		{"https://pub.r2.dev", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key), tt.base+" + "+tt.key)
	}
}

func TestNewR2Store_RequiresAllFields(t *testing.T) {
	cfg := R2Config{AccountID: "acc", BucketName: "b"}
	_, err := NewR2Store(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrR2NotConfigured)
}

package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

func TestCleanOrdering(t *testing.T) {
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     []core.DBOrdering
		wantErr  bool
	}{
		{name: "default", want: DefaultOrdering},
		{
			name:     "mapped with tie breaker",
			ordering: []core.DBOrdering{{Field: "startDate", Ascending: true}, {Field: "name"}},
			want: []core.DBOrdering{
				{Field: "created_at", Ascending: true},
				{Field: "name"},
				{Field: "id", Ascending: true},
			},
		},
		{name: "unknown field", ordering: []core.DBOrdering{{Field: "password_hash"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanOrdering(tt.ordering)
			if tt.wantErr {
				_, ok := err.(*core.ValidationError)
				assert.True(t, ok, "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromUser(t *testing.T) {
	created := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	s := FromUser(user.User{ID: "1", Name: "John", Email: "j@test.cd", Status: user.StatusActive, CreatedAt: created})
	assert.Equal(t, "2024-01-15", s.StartDate)
	assert.Equal(t, user.StatusActive, s.Status)
	assert.Zero(t, s.Stats)
}

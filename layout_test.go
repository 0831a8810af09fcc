package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testLayout = `
reservations:
  - start: 100
    end: 119
    label: ledger
collections:
  - name: users
    primary: auto
    secondary: auto
  - name: assets
    primary: 7
    secondary: none
  - name: accounts
`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(testLayout))
	require.NoError(t, err)
	require.Equal(t, []ReservationLayout{{Start: 100, End: 119, Label: "ledger"}}, l.Reservations)
	require.Equal(t, []CollectionLayout{
		{Name: "users", Primary: Auto, Secondary: Auto},
		{Name: "assets", Primary: At(7), Secondary: NoIndex},
		{Name: "accounts", Primary: Auto, Secondary: Auto},
	}, l.Collections)
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{"bad region", "collections:\n  - {name: a, primary: 300}\n", ErrBadRequest},
		{"bad word", "collections:\n  - {name: a, primary: sometimes}\n", ErrBadRequest},
		{"no primary", "collections:\n  - {name: a, primary: none}\n", ErrBadRequest},
		{"no name", "collections:\n  - {primary: 1}\n", ErrBadRequest},
		{"duplicate", "collections:\n  - {name: a}\n  - {name: a}\n", ErrAlreadyRegistered},
		{"inverted range", "reservations:\n  - {start: 5, end: 4}\n", ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.yaml))
			require.ErrorIs(t, err, tt.err)
		})
	}

	_, err := ParseLayout([]byte("collections: {"))
	require.Error(t, err)
}

func TestRegionSpecYAML(t *testing.T) {
	for _, spec := range []RegionSpec{Auto, NoIndex, At(0), At(MaxRegionID)} {
		raw, err := yaml.Marshal(spec)
		require.NoError(t, err)
		var back RegionSpec
		require.NoError(t, yaml.Unmarshal(raw, &back))
		require.Equal(t, spec, back)
	}
	spec, err := ParseRegionSpec(" AUTO ")
	require.NoError(t, err)
	require.Equal(t, Auto, spec)
}

func TestApplyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testLayout), 0o644))
	l, err := LoadLayout(path)
	require.NoError(t, err)

	m := setupMem(t)
	require.NoError(t, m.ApplyLayout(l))
	require.Equal(t, []string{"accounts", "assets", "users"}, m.Collections())
	require.Equal(t, Regions{Primary: 120, Secondary: 121, HasSecondary: true}, must(m.Regions("users")))
	require.Equal(t, Regions{Primary: 7}, must(m.Regions("assets")))
	require.Equal(t, Regions{Primary: 122, Secondary: 123, HasSecondary: true}, must(m.Regions("accounts")))
	require.Len(t, m.Reservations(), 1)

	// Applying the same layout again is a no-op.
	require.NoError(t, m.ApplyLayout(l))
	require.Equal(t, Regions{Primary: 120, Secondary: 121, HasSecondary: true}, must(m.Regions("users")))

	conflict := &Layout{Collections: []CollectionLayout{{Name: "other", Primary: At(110)}}}
	require.ErrorIs(t, m.ApplyLayout(conflict), ErrRegionInUse)
}

func TestLoadLayoutMissing(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

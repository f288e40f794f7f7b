package config

import (
	"context"
	"strings"
	"testing"

	"github.com/jdharms/jumpking-autosplitter/internal/split"
	"github.com/jdharms/jumpking-autosplitter/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name string
		node *SettingsNode
		want Settings
	}{
		{name: "absent", node: nil, want: Settings{}},
		{name: "empty", node: &SettingsNode{}, want: Settings{}},
		{
			name: "all true",
			node: &SettingsNode{AutoStartTimer: "True", AutoResetTimer: "true", UndoSplit: "TRUE"},
			want: Settings{AutoStartTimer: true, AutoResetTimer: true, UndoSplit: true},
		},
		{
			name: "garbage is false",
			node: &SettingsNode{AutoStartTimer: "yes please", AutoResetTimer: "False", UndoSplit: "True"},
			want: Settings{UndoSplit: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoadSettings(tt.node))
		})
	}
}

func TestSettingsNodeRoundTrip(t *testing.T) {
	s := Settings{AutoStartTimer: true, UndoSplit: true}
	node := s.Node()
	assert.Equal(t, "True", node.AutoStartTimer)
	assert.Equal(t, "False", node.AutoResetTimer)
	assert.Equal(t, s, LoadSettings(node))
}

func TestSettingsHash(t *testing.T) {
	seen := map[uint32]Settings{}
	for _, start := range []bool{false, true} {
		for _, reset := range []bool{false, true} {
			for _, undo := range []bool{false, true} {
				s := Settings{AutoStartTimer: start, AutoResetTimer: reset, UndoSplit: undo}
				h := s.Hash()
				prev, dup := seen[h]
				assert.False(t, dup, "%+v collides with %+v", s, prev)
				seen[h] = s
				assert.Equal(t, h, s.Hash())
			}
		}
	}
	assert.Equal(t, settingsHashSeed, Settings{}.Hash())
}

func TestSettingsSetGet(t *testing.T) {
	var s Settings
	for _, name := range Toggles {
		require.NoError(t, s.Set(name, true))
		v, err := s.Get(name)
		require.NoError(t, err)
		assert.True(t, v, name)
	}
	assert.Error(t, s.Set("AutoSave", true))
	_, err := s.Get("AutoSave")
	assert.Error(t, err)
}

func sampleList() *split.List {
	return split.NewList(
		split.NewScreenSplit("", 3),
		split.NewItemSplit("", 7, 2),
		split.NewEndingSplit("", 1),
	)
}

func TestDocumentRoundTrip(t *testing.T) {
	settings := Settings{AutoResetTimer: true, UndoSplit: true}
	doc := NewDocument(sampleList(), settings)

	data, err := doc.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Split type="Screen" offset="0" screen="3"></Split>`)
	assert.Contains(t, string(data), `<UndoSplit>True</UndoSplit>`)

	parsed, err := ParseDocument(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Hash)
	assert.Equal(t, *doc.Hash, *parsed.Hash)
	assert.Equal(t, settings, LoadSettings(parsed.Settings))

	list := &split.List{}
	list.Load(nil, parsed.Splits)
	assert.Equal(t, *doc.Hash, Fingerprint(list, LoadSettings(parsed.Settings)))
}

func TestFingerprintSensitiveToToggles(t *testing.T) {
	list := sampleList()
	assert.NotEqual(t, Fingerprint(list, Settings{}), Fingerprint(list, Settings{UndoSplit: true}))
}

func TestParseDocumentEmptyAndPartial(t *testing.T) {
	doc, err := ParseDocument(nil)
	require.NoError(t, err)
	assert.Nil(t, doc.Splits)
	assert.Nil(t, doc.Settings)
	assert.Nil(t, doc.Hash)

	doc, err = ParseDocument([]byte(`<AutoSplitterSettings><Splits></Splits></AutoSplitterSettings>`))
	require.NoError(t, err)
	require.NotNil(t, doc.Splits)
	assert.Empty(t, doc.Splits.Nodes)
	assert.Equal(t, Settings{}, LoadSettings(doc.Settings))

	doc, err = ParseDocument([]byte(`<AutoSplitterSettings><Splits>` +
		`<Split type="Screen" offset="oops" screen="4"/>` +
		`<Split type="Ending" offset="1" ending="2"/>` +
		`</Splits></AutoSplitterSettings>`))
	require.NoError(t, err)
	require.NotNil(t, doc.Splits)
	list := split.NewList()
	assert.Zero(t, list.Load(nil, doc.Splits))
	assert.Equal(t, 2, list.Len())

	_, err = ParseDocument([]byte(`<AutoSplitterSettings><Splits>`))
	assert.Error(t, err)
}

func TestConfigLoader(t *testing.T) {
	logger, _ := test.NewNullLogger()
	loader := NewConfigLoader(logger, store.NewFileStore(logger, t.TempDir()))
	ctx := context.Background()

	_, err := loader.LoadDocument(ctx, "any%")
	assert.ErrorIs(t, err, store.ErrNotFound)

	doc := NewDocument(sampleList(), Settings{AutoStartTimer: true})
	require.NoError(t, loader.SaveDocument(ctx, "any%", doc))
	require.NoError(t, loader.SaveDocument(ctx, "all endings", doc))

	loaded, err := loader.LoadDocument(ctx, "any%")
	require.NoError(t, err)
	assert.Equal(t, *doc.Hash, *loaded.Hash)
	assert.Len(t, loaded.Splits.Nodes, 3)

	names, err := loader.DiscoverDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"all endings", "any%"}, names)
}

func TestFindByName(t *testing.T) {
	logger, _ := test.NewNullLogger()
	loader := NewConfigLoader(logger, nil)
	names := []string{"any%", "any% glitchless", "all endings"}

	got, err := loader.FindByName(names, "ANY%")
	require.NoError(t, err)
	assert.Equal(t, "any%", got)

	got, err = loader.FindByName(names, "endings")
	require.NoError(t, err)
	assert.Equal(t, "all endings", got)

	_, err = loader.FindByName(names, "an")
	assert.ErrorContains(t, err, "multiple")

	_, err = loader.FindByName(names, "babe")
	assert.ErrorContains(t, err, "no configuration")
}

func TestLoadAppConfig(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadAppConfig(v)
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, 1990, cfg.LiveSplitPort)

	v.Set("store", "postgres")
	_, err = LoadAppConfig(v)
	assert.ErrorContains(t, err, "unknown store")

	v.Set("store", StoreRedis)
	v.Set("livesplit-port", 70000)
	_, err = LoadAppConfig(v)
	assert.ErrorContains(t, err, "livesplit-port")
}

func TestLoadAppConfigFromEnvironment(t *testing.T) {
	t.Setenv("JKSPLIT_CONFIG_NAME", "any-percent")
	t.Setenv("JKSPLIT_LIVESPLIT_PORT", "2000")

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("JKSPLIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg, err := LoadAppConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "any-percent", cfg.ConfigName)
	assert.Equal(t, 2000, cfg.LiveSplitPort)
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/railkit/trackforge/editor/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.LayoutConfig {
	return &engine.LayoutConfig{
		Name:        "Test Layout",
		Description: "Test layout configuration",
		WorldWidth:  800,
		WorldHeight: 600,
		Tracks: [][]engine.PointSpec{
			{{X: 100, Y: 300}, {X: 700, Y: 300}},
			{{X: 700, Y: 300}, {X: 750, Y: 200}, {X: 780, Y: 100}},
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.LayoutConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		// Create default config
		defaultConfig := createValidConfig()
		defaultConfig.Name = "Mainline"
		writeConfigFile(t, dir, "mainline", defaultConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
		if got := manager.GetDefault(); got == nil || got.Name != "Mainline" {
			t.Errorf("Expected mainline as default, got %+v", got)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Errorf("NewManager should succeed even without config files, got error: %v", err)
		}

		if manager == nil {
			t.Fatal("Expected manager to be created")
		}

		// Should fall back to the built-in minimal layout
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Error("Expected default config to be available")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	defaultConfig.Name = "Mainline"
	writeConfigFile(t, dir, "mainline", defaultConfig)

	junctionConfig := createValidConfig()
	junctionConfig.Name = "Junction"
	junctionConfig.WorldWidth = 1200
	writeConfigFile(t, dir, "junction", junctionConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("junction")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if config.Name != "Junction" {
			t.Errorf("Expected name Junction, got %q", config.Name)
		}
		if config.WorldWidth != 1200 {
			t.Errorf("Expected world width 1200, got %v", config.WorldWidth)
		}
	})

	t.Run("load with json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("junction.json")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if config.Name != "Junction" {
			t.Errorf("Expected name Junction, got %q", config.Name)
		}
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := manager.LoadConfig("nonexistent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		broken := createValidConfig()
		broken.WorldWidth = 5 // below the minimum
		writeConfigFile(t, dir, "broken", broken)

		_, err := manager.LoadConfig("broken")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("cached load returns same pointer", func(t *testing.T) {
		first, err := manager.LoadConfig("junction")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		second, err := manager.LoadConfig("junction")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if first != second {
			t.Error("Expected cached config to be reused")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	mainline := createValidConfig()
	mainline.Name = "Mainline"
	writeConfigFile(t, dir, "mainline", mainline)

	junction := createValidConfig()
	junction.Name = "Junction"
	writeConfigFile(t, dir, "junction", junction)

	// An invalid config should be skipped, not break the listing
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{oops"), 0644); err != nil {
		t.Fatalf("Failed to write broken config: %v", err)
	}
	// Non-JSON files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("notes"), 0644); err != nil {
		t.Fatalf("Failed to write notes file: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs: %v", err)
	}

	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}

	for _, info := range configs {
		if info.ConfigID == "" || info.Filename == "" {
			t.Errorf("Incomplete config info: %+v", info)
		}
		if info.TrackCount != 2 {
			t.Errorf("Expected 2 tracks in %s, got %d", info.ConfigID, info.TrackCount)
		}
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	mainline := createValidConfig()
	mainline.Name = "Mainline"
	writeConfigFile(t, dir, "mainline", mainline)

	junction := createValidConfig()
	junction.Name = "Junction"
	writeConfigFile(t, dir, "junction", junction)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("junction"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if got := manager.GetDefault(); got.Name != "Junction" {
		t.Errorf("Expected default Junction, got %q", got.Name)
	}

	if err := manager.SetDefault("nonexistent"); err == nil {
		t.Error("Expected error setting a missing config as default")
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	// Round-trips through disk
	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig after save: %v", err)
	}
	if loaded.Name != "Saved" {
		t.Errorf("Expected name Saved, got %q", loaded.Name)
	}

	// Invalid config is rejected before touching disk
	invalid := createValidConfig()
	invalid.Name = ""
	if err := manager.SaveConfig("invalid", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "invalid.json")); !os.IsNotExist(err) {
		t.Error("Invalid config was written to disk")
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	mainline := createValidConfig()
	mainline.Name = "Mainline"
	writeConfigFile(t, dir, "mainline", mainline)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	before, err := manager.LoadConfig("mainline")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// Change the file on disk, refresh, and observe the new content
	mainline.Description = "Updated description"
	writeConfigFile(t, dir, "mainline", mainline)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}

	after, err := manager.LoadConfig("mainline")
	if err != nil {
		t.Fatalf("LoadConfig after refresh: %v", err)
	}
	if after == before {
		t.Error("Expected refreshed config to be reloaded from disk")
	}
	if after.Description != "Updated description" {
		t.Errorf("Expected updated description, got %q", after.Description)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	mainline := createValidConfig()
	writeConfigFile(t, dir, "mainline", mainline)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("mainline"); err != nil {
				t.Errorf("Concurrent LoadConfig: %v", err)
			}
			manager.GetDefault()
		}()
	}
	wg.Wait()
}

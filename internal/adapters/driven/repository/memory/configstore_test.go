package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seeded returns a store preloaded with the given values.
func seeded(values map[string]any) *ConfigStore {
	store := NewConfigStore()
	for k, v := range values {
		_ = store.Set(k, v)
	}
	return store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	t.Run("set then get", func(t *testing.T) {
		store := NewConfigStore()

		require.NoError(t, store.Set("key1", "value1"))

		val, ok := store.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("set overwrites", func(t *testing.T) {
		store := NewConfigStore()

		require.NoError(t, store.Set("key1", "original"))
		require.NoError(t, store.Set("key1", "updated"))

		val, ok := store.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
	})

	t.Run("miss reports absence", func(t *testing.T) {
		val, ok := NewConfigStore().Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("stores are independent", func(t *testing.T) {
		store1 := seeded(map[string]any{"key1": "value1"})
		store2 := seeded(map[string]any{"key2": "value2"})

		_, ok := store1.Get("key2")
		assert.False(t, ok)
		_, ok = store2.Get("key1")
		assert.False(t, ok)
	})
}

func TestConfigStore_GetString(t *testing.T) {
	store := seeded(map[string]any{"str": "string_value", "num": 123})

	assert.Equal(t, "string_value", store.GetString("str"))
	assert.Equal(t, "", store.GetString("num"))
	assert.Equal(t, "", store.GetString("nonexistent"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := seeded(map[string]any{
		"int":   42,
		"int64": int64(43),
		"float": 123.7,
		"str":   "not_a_number",
	})

	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 43, store.GetInt("int64"))
	assert.Equal(t, 123, store.GetInt("float"), "floats truncate")
	assert.Equal(t, 0, store.GetInt("str"))
	assert.Equal(t, 0, store.GetInt("nonexistent"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := seeded(map[string]any{
		"float":   0.75,
		"float32": float32(0.5),
		"int":     2,
		"str":     "not_a_number",
		"zero":    0.0,
	})

	assert.Equal(t, 0.75, store.GetFloat("float"))
	assert.Equal(t, 0.5, store.GetFloat("float32"))
	assert.Equal(t, 2.0, store.GetFloat("int"))
	assert.Equal(t, 0.0, store.GetFloat("str"))
	assert.Equal(t, 0.0, store.GetFloat("nonexistent"))

	// An explicit zero is still a present key.
	val, ok := store.Get("zero")
	assert.True(t, ok)
	assert.Equal(t, 0.0, val)
}

func TestConfigStore_GetBool(t *testing.T) {
	store := seeded(map[string]any{"yes": true, "no": false, "str": "true"})

	assert.True(t, store.GetBool("yes"))
	assert.False(t, store.GetBool("no"))
	assert.False(t, store.GetBool("str"), "strings do not coerce")
	assert.False(t, store.GetBool("nonexistent"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := seeded(map[string]any{
		"strings": []string{"a", "b"},
		"mixed":   []any{"a", 1, "b"},
		"str":     "not_a_slice",
	})

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("strings"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("mixed"), "non-strings are dropped")
	assert.Nil(t, store.GetStringSlice("str"))
	assert.Nil(t, store.GetStringSlice("nonexistent"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	_ = store.Set("key1", "value1")
	require.NoError(t, store.Save())
	assert.Equal(t, "value1", store.GetString("key1"))
}

func TestConfigStore_Path(t *testing.T) {
	assert.Equal(t, ":memory:", NewConfigStore().Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	for i := 0; i < 10; i++ {
		_ = store.Set(fmt.Sprintf("key-%d", i), i)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id%10)
			switch id % 5 {
			case 0:
				_ = store.Set(fmt.Sprintf("key-w-%d", id), id)
			case 1:
				_, _ = store.Get(key)
			case 2:
				_ = store.GetString(key)
			case 3:
				_ = store.GetInt(key)
			case 4:
				_ = store.GetFloat(key)
			}
		}(i)
	}
	wg.Wait()

	val, ok := store.Get("key-0")
	assert.True(t, ok)
	assert.NotNil(t, val)
}

package conversation

import (
	"sync"
	"testing"
)

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	counter := map[string]*int{"a": new(int), "b": new(int)}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			*counter[key]++
		}(key)
	}
	wg.Wait()
	if *counter["a"] != 25 || *counter["b"] != 25 {
		t.Fatalf("counts = %d/%d", *counter["a"], *counter["b"])
	}
	if k.size() != 0 {
		t.Fatalf("size = %d, want 0", k.size())
	}
}

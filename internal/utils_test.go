package internal

import (
	"fmt"
	"sync"
	"testing"
)

func TestSafeMapAddAndDelete(t *testing.T) {
	m := NewSafeMap()

	m.Add("a")
	m.Add("a")
	if m.Len() != 1 {
		t.Fatalf("Len = %d after adding the same key twice, want 1", m.Len())
	}

	m.Delete("a")
	if m.Len() != 0 {
		t.Errorf("Len = %d after delete, want 0", m.Len())
	}
	m.Delete("missing")
	if m.Len() != 0 {
		t.Errorf("Len = %d after deleting an absent key, want 0", m.Len())
	}
}

func TestSafeMapConcurrentAccess(t *testing.T) {
	m := NewSafeMap()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			m.Add(key)
			if i%2 == 0 {
				m.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != 25 {
		t.Errorf("Len = %d, want 25", m.Len())
	}
}

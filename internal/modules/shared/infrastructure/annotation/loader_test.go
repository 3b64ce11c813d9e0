package annotation

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jdkato/prose/v2"
	"go.uber.org/goleak"

	"narrative-navigator/internal/modules/narrative/domain"
)

func TestLoader_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	var builds atomic.Int32
	model := &prose.Model{}
	loader := newLoader(func() (*prose.Model, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return model, nil
	})

	if loader.Ready() {
		t.Fatal("Ready() = true before first use")
	}

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*prose.Model, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loader.Model()
		}(i)
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("build called %d times, want 1", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: error = %v", i, errs[i])
		}
		if results[i] != model {
			t.Errorf("caller %d: got a different model", i)
		}
	}
	if !loader.Ready() {
		t.Error("Ready() = false after load")
	}

	if _, err := loader.Model(); err != nil {
		t.Fatal(err)
	}
	if n := builds.Load(); n != 1 {
		t.Errorf("build called %d times after reuse, want 1", n)
	}
}

func TestLoader_RetriesAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	attempts := 0
	loader := newLoader(func() (*prose.Model, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("corrupt model data")
		}
		return &prose.Model{}, nil
	})

	_, err := loader.Model()
	if !errors.Is(err, domain.ErrAnnotationUnavailable) {
		t.Fatalf("first Model() error = %v, want ErrAnnotationUnavailable", err)
	}
	if loader.Ready() {
		t.Error("Ready() = true after failed load")
	}

	if err := loader.Warm(); err != nil {
		t.Fatalf("Warm() after failure error = %v", err)
	}
	if !loader.Ready() || attempts != 2 {
		t.Errorf("Ready() = %v, attempts = %d; want true, 2", loader.Ready(), attempts)
	}
}

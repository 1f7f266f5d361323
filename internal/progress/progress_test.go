package progress

import (
	"os"
	"testing"
)

func TestIncrementCountsEvenWhenDisabled(t *testing.T) {
	tr := New(os.Stdout, true)
	tr.Increment()
	tr.Increment()
	tr.Increment()
	if got := tr.Processed(); got != 3 {
		t.Errorf("Processed() = %d, want 3", got)
	}
}

func TestFinishDoesNotPanicWhenNotLive(t *testing.T) {
	tr := New(os.Stdout, true)
	tr.Finish()
}

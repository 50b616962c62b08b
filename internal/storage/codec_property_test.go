package storage

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/valter-silva-au/todo/pkg/models"
	"pgregory.net/rapid"
)

func genTask(t *rapid.T) models.Task {
	return models.Task{
		ID:        fmt.Sprintf("%d", rapid.Int64Min(0).Draw(t, "id")),
		Text:      rapid.StringN(1, 60, -1).Draw(t, "text"),
		Completed: rapid.Bool().Draw(t, "completed"),
	}
}

// Encoding a collection and decoding it back yields the same tasks in the
// same order.
func TestTaskCodecRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := rapid.SliceOfN(rapid.Custom(genTask), 0, 30).Draw(t, "tasks")

		data, err := EncodeTasks(tasks)
		if err != nil {
			t.Fatal(err)
		}
		back, err := DecodeTasks(data)
		if err != nil {
			t.Fatal(err)
		}

		if len(back) != len(tasks) {
			t.Fatalf("length mismatch: got %d, want %d", len(back), len(tasks))
		}
		for i := range tasks {
			if back[i] != tasks[i] {
				t.Fatalf("task %d: got %+v, want %+v", i, back[i], tasks[i])
			}
		}
	})
}

// Encoding the same collection twice produces identical bytes.
func TestTaskCodecDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := rapid.SliceOfN(rapid.Custom(genTask), 0, 30).Draw(t, "tasks")

		a, err := EncodeTasks(tasks)
		if err != nil {
			t.Fatal(err)
		}
		b, err := EncodeTasks(tasks)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("encodings differ:\n%s\n%s", a, b)
		}
	})
}

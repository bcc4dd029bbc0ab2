package reconcile

import (
	"context"
	"errors"
	"testing"
)

type item struct {
	Id       int
	ParentId int
	Note     string
}

func (i item) GetId() int { return i.Id }

func noteChanged(before, after item) bool { return before.Note != after.Note }

// recordingStore keeps rows in memory and counts every call.
type recordingStore struct {
	rows    map[int]item
	nextId  int
	inserts []item
	updates []item
	deletes []int
	failOn  string
}

func newRecordingStore(rows ...item) *recordingStore {
	s := &recordingStore{rows: map[int]item{}, nextId: 100}
	for _, r := range rows {
		s.rows[r.Id] = r
	}
	return s
}

func (s *recordingStore) Insert(_ context.Context, it *item) error {
	if s.failOn == "insert" {
		return errors.New("insert failed")
	}
	s.nextId++
	it.Id = s.nextId
	s.rows[it.Id] = *it
	s.inserts = append(s.inserts, *it)
	return nil
}

func (s *recordingStore) Update(_ context.Context, it *item) (bool, error) {
	if _, ok := s.rows[it.Id]; !ok {
		return false, nil
	}
	s.rows[it.Id] = *it
	s.updates = append(s.updates, *it)
	return true, nil
}

func (s *recordingStore) Delete(_ context.Context, it *item) error {
	delete(s.rows, it.Id)
	s.deletes = append(s.deletes, it.Id)
	return nil
}

func original() []item {
	return []item{
		{Id: 1, ParentId: 7, Note: "a"},
		{Id: 2, ParentId: 7, Note: "b"},
		{Id: 3, ParentId: 7, Note: "c"},
	}
}

func TestDiff_SetsAreDisjointAndUpdatesExistInBoth(t *testing.T) {
	cases := []struct {
		name    string
		working []item
	}{
		{"identical", original()},
		{"empty working", nil},
		{"all new", []item{{Note: "x"}, {Note: "y"}}},
		{"mixed", []item{{Id: 1, Note: "a2"}, {Id: 3, Note: "c"}, {Note: "new"}}},
		{"reordered and edited", []item{{Id: 3, Note: "c3"}, {Id: 2, Note: "b"}, {Id: 1, Note: "a1"}}},
	}
	for _, tc := range cases {
		plan, err := Diff(original(), tc.working, noteChanged)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		deleted := map[int]bool{}
		for _, d := range plan.ToDelete {
			deleted[d.Id] = true
		}
		for _, ins := range plan.ToInsert {
			if ins.Id != Unsaved {
				t.Fatalf("%s: insert with key %d", tc.name, ins.Id)
			}
			if deleted[ins.Id] {
				t.Fatalf("%s: key %d both inserted and deleted", tc.name, ins.Id)
			}
		}
		inOriginal := map[int]bool{}
		for _, o := range original() {
			inOriginal[o.Id] = true
		}
		inWorking := map[int]bool{}
		for _, w := range tc.working {
			inWorking[w.Id] = true
		}
		for _, u := range plan.ToUpdate {
			if !inOriginal[u.Id] || !inWorking[u.Id] {
				t.Fatalf("%s: update key %d missing from one side", tc.name, u.Id)
			}
			if deleted[u.Id] {
				t.Fatalf("%s: key %d both updated and deleted", tc.name, u.Id)
			}
		}
	}
}

func TestApply_IdenticalWorkingSetWritesNothing(t *testing.T) {
	store := newRecordingStore(original()...)
	plan, err := Diff(original(), original(), noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
	if _, err := Apply[item](context.Background(), store, plan, nil); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(store.inserts)+len(store.updates)+len(store.deletes) != 0 {
		t.Fatalf("expected no store calls, got %d inserts %d updates %d deletes",
			len(store.inserts), len(store.updates), len(store.deletes))
	}
}

func TestApply_OneNewItemIsInsertedWithParentKey(t *testing.T) {
	store := newRecordingStore(original()...)
	working := append(original(), item{Note: "new"})

	plan, err := Diff(original(), working, noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	result, err := Apply[item](context.Background(), store, plan, func(it *item) { it.ParentId = 7 })
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(store.inserts) != 1 || len(store.updates) != 0 || len(store.deletes) != 0 {
		t.Fatalf("expected 1 insert only, got %d/%d/%d", len(store.inserts), len(store.updates), len(store.deletes))
	}
	if store.inserts[0].ParentId != 7 {
		t.Fatalf("expected parent key 7, got %d", store.inserts[0].ParentId)
	}
	if plan.ToInsert[0].Id == Unsaved || result.Inserted[0] != plan.ToInsert[0].Id {
		t.Fatalf("expected assigned key written back, got %+v / %+v", plan.ToInsert[0], result.Inserted)
	}
}

func TestApply_RemovedItemIsDeletedOnly(t *testing.T) {
	store := newRecordingStore(original()...)
	working := []item{original()[0], original()[2]}

	plan, err := Diff(original(), working, noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if _, err := Apply[item](context.Background(), store, plan, nil); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != 2 {
		t.Fatalf("expected exactly one delete of key 2, got %v", store.deletes)
	}
	if len(store.inserts) != 0 || len(store.updates) != 0 {
		t.Fatalf("expected no inserts or updates, got %d/%d", len(store.inserts), len(store.updates))
	}
}

func TestApply_ModifiedItemIsUpdated(t *testing.T) {
	store := newRecordingStore(original()...)
	working := original()
	working[1].Note = "changed"

	plan, err := Diff(original(), working, noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if _, err := Apply[item](context.Background(), store, plan, nil); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(store.updates) != 1 || store.updates[0].Id != 2 || store.rows[2].Note != "changed" {
		t.Fatalf("expected key 2 updated, got %+v", store.updates)
	}
}

func TestDiff_RejectsDuplicateKeys(t *testing.T) {
	working := []item{{Id: 1, Note: "a"}, {Id: 1, Note: "a again"}}
	if _, err := Diff(original(), working, noteChanged); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestDiff_RejectsKeyOutsideOriginal(t *testing.T) {
	working := []item{{Id: 42, Note: "foreign"}}
	if _, err := Diff(original(), working, noteChanged); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestApply_LostUpdateIsSkipped(t *testing.T) {
	// row 2 was deleted by someone else after the original set was loaded
	store := newRecordingStore(original()[0], original()[2])
	working := original()
	working[1].Note = "edited"

	plan, err := Diff(original(), working, noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	result, err := Apply[item](context.Background(), store, plan, nil)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
		t.Fatalf("expected key 2 skipped, got %+v", result.Skipped)
	}
	if _, ok := store.rows[2]; ok {
		t.Fatalf("skipped update must not recreate the row")
	}
}

func TestApply_StopsOnStoreError(t *testing.T) {
	store := newRecordingStore(original()...)
	store.failOn = "insert"
	working := append(original(), item{Note: "new"})

	plan, err := Diff(original(), working, noteChanged)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if _, err := Apply[item](context.Background(), store, plan, nil); err == nil {
		t.Fatalf("expected insert error to be returned")
	}
}

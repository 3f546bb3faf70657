package walk

import "testing"

func TestInodeFilterAdd(t *testing.T) {
	f := NewInodeFilter()

	if !f.Add(1, 100, 2) {
		t.Fatal("first sighting of (1, 100) should count")
	}
	if f.Add(1, 100, 2) {
		t.Fatal("second sighting of (1, 100) should not count")
	}
	if !f.Add(2, 100, 2) {
		t.Fatal("same inode on another device is a different file")
	}
}

func TestInodeFilterSingleLink(t *testing.T) {
	f := NewInodeFilter()

	// nlink <= 1 short-circuits: the inode is never recorded.
	for i := 0; i < 3; i++ {
		if !f.Add(1, 7, 1) {
			t.Fatalf("sighting %d of a single-link inode should count", i+1)
		}
	}
	if !f.Add(1, 7, 0) {
		t.Fatal("zero nlink should count")
	}

	// A later multi-link sighting of the same inode still counts once.
	if !f.Add(1, 7, 2) {
		t.Fatal("first multi-link sighting should count")
	}
	if f.Add(1, 7, 2) {
		t.Fatal("second multi-link sighting should not count")
	}
}

func TestInodeFilterZeroValue(t *testing.T) {
	var f InodeFilter
	if !f.Add(1, 1, 2) {
		t.Fatal("zero-value filter should accept the first sighting")
	}
	if f.Add(1, 1, 2) {
		t.Fatal("zero-value filter should remember the first sighting")
	}
}

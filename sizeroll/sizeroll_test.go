package sizeroll_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golift.io/rollerr/filer"
	"golift.io/rollerr/mocks"
	"golift.io/rollerr/sizeroll"
)

var errTest = fmt.Errorf("this is a test error")

func testFakeFiles(mockCtrl *gomock.Controller, names []string) []os.FileInfo {
	files := make([]os.FileInfo, 0, len(names))

	for _, name := range names {
		fake := mocks.NewMockFileInfo(mockCtrl)
		fake.EXPECT().Name().Return(name)
		files = append(files, fake)
	}

	return files
}

func TestShouldRoll(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &sizeroll.Layout{MaxBytes: 100}
	assert.False(layout.ShouldRoll(0))
	assert.False(layout.ShouldRoll(99))
	assert.True(layout.ShouldRoll(100))
	assert.True(layout.ShouldRoll(5000))

	// No threshold means a plain append sink that never rolls.
	layout = &sizeroll.Layout{}
	assert.False(layout.ShouldRoll(1 << 40))
}

func TestActiveName(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &sizeroll.Layout{}
	assert.Equal("/var/log/service.log", layout.ActiveName("/var/log/service.log"))
}

func TestDirs(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	// test archive dir.
	layout := &sizeroll.Layout{ArchiveDir: "/var/log/archives", Backups: -2}
	dirs, err := layout.Dirs("/var/log/service.log")
	assert.Equal([]string{filepath.Join("/", "var", "log"), filepath.Join("/", "var", "log", "archives")},
		dirs, "the wrong directories were returned")
	assert.Nil(err, "this should not producce an error")
	assert.EqualValues(filer.Default(), layout.Filer)
	assert.Zero(layout.Backups, "a negative backup count must clamp to zero")

	// test without archive dir.
	layout = &sizeroll.Layout{}
	dirs, err = layout.Dirs("/var/log/service.log")
	assert.Equal([]string{filepath.Join("/", "var", "log")}, dirs, "the wrong directory was returned")
	assert.Nil(err, "this should not producce an error")
}

func TestPost(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &sizeroll.Layout{PostRotate: func(s1, s2 string) {
		assert.Equal("string1", s1)
		assert.Equal("string2", s2)
	}}
	layout.Post("string1", "string2")

	layout.PostRotate = nil
	layout.Post("string1", "string2")
}

func TestRotateFirst(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{ArchiveDir: "/var/log/archives", Backups: 2, Filer: mockFiler}

	// First rotation: nothing to renumber, the active file moves to slot 1.
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir(layout.ArchiveDir).Return(nil, nil),
		mockFiler.EXPECT().Remove(filepath.Join(layout.ArchiveDir, "service.log.1")).Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", filepath.Join(layout.ArchiveDir, "service.log.1")),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal(filepath.Join(layout.ArchiveDir, "service.log.1"), file)
	assert.Nil(err)
}

func TestRotateShiftsDown(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 3, Filer: mockFiler}

	// A full house plus strays: the active file, a non-numeric name and a
	// foreign prefix must all be left alone. Slot 3 is expired, so slot 2
	// overwrites it, and everything else shifts down one.
	fakeFiles := testFakeFiles(mockCtrl, []string{
		"service.log",
		"service.log.1",
		"service.log.2",
		"service.log.3",
		"service.log.backup",
		"other.log.1",
	})
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(fakeFiles, nil),
		mockFiler.EXPECT().Remove("/var/log/service.log.3"),
		mockFiler.EXPECT().Rename("/var/log/service.log.2", "/var/log/service.log.3"),
		mockFiler.EXPECT().Remove("/var/log/service.log.2").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log.1", "/var/log/service.log.2"),
		mockFiler.EXPECT().Remove("/var/log/service.log.1").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service.log.1"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service.log.1", file)
	assert.Nil(err)
}

func TestRotateCompressedBackups(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 5, Filer: mockFiler}

	// Backups from a compressed setup keep their suffix while shifting.
	fakeFiles := testFakeFiles(mockCtrl, []string{"service.log.1.gz", "service.log.2.gz"})
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(fakeFiles, nil),
		mockFiler.EXPECT().Remove("/var/log/service.log.3.gz").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log.2.gz", "/var/log/service.log.3.gz"),
		mockFiler.EXPECT().Remove("/var/log/service.log.2.gz").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log.1.gz", "/var/log/service.log.2.gz"),
		mockFiler.EXPECT().Remove("/var/log/service.log.1").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service.log.1"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service.log.1", file)
	assert.Nil(err)
}

func TestRotateKeepExt(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 5, KeepExt: true, Filer: mockFiler}

	// With KeepExt the ordinal sits before the extension and the whole token
	// must be the number: service.1.2.log is somebody else's file, and
	// touching it would blow the mock expectations.
	fakeFiles := testFakeFiles(mockCtrl, []string{"service.log", "service.1.log", "service.2.log.gz", "service.1.2.log"})
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(fakeFiles, nil),
		mockFiler.EXPECT().Remove("/var/log/service.3.log.gz").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.2.log.gz", "/var/log/service.3.log.gz"),
		mockFiler.EXPECT().Remove("/var/log/service.2.log").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.1.log", "/var/log/service.2.log"),
		mockFiler.EXPECT().Remove("/var/log/service.1.log").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service.1.log"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service.1.log", file)
	assert.Nil(err)
}

func TestRotateDottedNames(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 5, Filer: mockFiler}

	// Without KeepExt the ordinal is the last dot token, so a dotted infix
	// is accepted and the renumber collapses the name to its canonical form.
	// The entry without a numeric tail is not a backup at all.
	fakeFiles := testFakeFiles(mockCtrl, []string{"service.log.old.3", "service.log.1", "service.log.rotated"})
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(fakeFiles, nil),
		mockFiler.EXPECT().Remove("/var/log/service.log.4").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log.old.3", "/var/log/service.log.4"),
		mockFiler.EXPECT().Remove("/var/log/service.log.2").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log.1", "/var/log/service.log.2"),
		mockFiler.EXPECT().Remove("/var/log/service.log.1").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service.log.1"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service.log.1", file)
	assert.Nil(err)
}

func TestRotateDiscard(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 0, Filer: mockFiler}

	// Zero backups: the closed file is removed, nothing is scanned.
	mockFiler.EXPECT().Remove("/var/log/service.log")

	file, err := layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.Nil(err)

	// A file that never existed is not an error either.
	mockFiler.EXPECT().Remove("/var/log/service.log").Return(os.ErrNotExist)

	file, err = layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.Nil(err)
}

func TestRotateErrors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &sizeroll.Layout{Backups: 2, Filer: mockFiler}

	// An unreadable directory fails the rotation.
	mockFiler.EXPECT().ReadDir("/var/log").Return(nil, errTest)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.ErrorIs(err, errTest)

	// A failed rename fails the rotation.
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(nil, nil),
		mockFiler.EXPECT().Remove("/var/log/service.log.1").Return(os.ErrNotExist),
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service.log.1").Return(errTest),
	)

	file, err = layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.ErrorIs(err, errTest)

	// A slot that cannot be cleared fails the rotation. Not-found errors
	// are the normal case and covered above; this one is a real failure.
	fakeFiles := testFakeFiles(mockCtrl, []string{"service.log.1"})
	gomock.InOrder(
		mockFiler.EXPECT().ReadDir("/var/log").Return(fakeFiles, nil),
		mockFiler.EXPECT().Remove("/var/log/service.log.2").Return(errTest),
	)

	file, err = layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.ErrorIs(err, errTest)
}

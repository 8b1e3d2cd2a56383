package sizeroll

import "sort"

// backupFiles is used to satisfy a sort.Sort interface.
type backupFiles struct {
	Files    []string
	ordinals []int
	exts     []string // compressed suffix of each file, "" when plain.
}

func (b *backupFiles) add(file string, ordinal int, ext string) {
	b.Files = append(b.Files, file)
	b.ordinals = append(b.ordinals, ordinal)
	b.exts = append(b.exts, ext)
}

// Len is part of sort.Interface.
func (b *backupFiles) Len() int {
	return len(b.Files)
}

// Swap is part of sort.Interface. We track three slices, so swap them all!
func (b *backupFiles) Swap(i, j int) {
	b.Files[i], b.Files[j] = b.Files[j], b.Files[i]
	b.ordinals[i], b.ordinals[j] = b.ordinals[j], b.ordinals[i]
	b.exts[i], b.exts[j] = b.exts[j], b.exts[i]
}

// Less is part of the sort.Sort interface.
// The files are sorted according to their backup ordinal.
func (b *backupFiles) Less(i, j int) bool {
	return b.ordinals[i] < b.ordinals[j]
}

// Our backupFiles interface must satify a sort.Interface.
var _ sort.Interface = (*backupFiles)(nil)

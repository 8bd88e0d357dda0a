package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedepot/internal/domain/models"
)

func TestGetTree(t *testing.T) {
	folderRepo := newFakeFolderRepo()
	fileRepo := newFakeFileRepo()
	svc := NewTreeService(folderRepo, fileRepo, testLogger())

	// root-a
	//   child-b
	//     grand-c (with file fc)
	//   file fb
	// root-d
	// root file froot
	folderRepo.add("a", nil, "root-a")
	folderRepo.add("b", strPtr("a"), "child-b")
	folderRepo.add("c", strPtr("b"), "grand-c")
	folderRepo.add("d", nil, "root-d")

	fileRepo.add("fb", strPtr("a"), "fb.txt", "key-fb", "text/plain")
	fileRepo.add("fc", strPtr("c"), "fc.txt", "key-fc", "text/plain")
	fileRepo.add("froot", nil, "froot.txt", "key-froot", "text/plain")

	tree, err := svc.GetTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree.Folders, 2)
	a := tree.Folders[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "d", tree.Folders[1].ID)

	require.Len(t, a.Folders, 1)
	b := a.Folders[0]
	assert.Equal(t, "b", b.ID)
	require.Len(t, b.Folders, 1)
	c := b.Folders[0]
	assert.Equal(t, "c", c.ID)

	require.Len(t, a.Files, 1)
	assert.Equal(t, "fb", a.Files[0].ID)
	require.Len(t, c.Files, 1)
	assert.Equal(t, "fc", c.Files[0].ID)

	require.Len(t, tree.Files, 1)
	assert.Equal(t, "froot", tree.Files[0].ID)
}

// Every folder and file appears exactly once in the built tree.
func TestGetTree_NoDuplicates(t *testing.T) {
	folderRepo := newFakeFolderRepo()
	fileRepo := newFakeFileRepo()
	svc := NewTreeService(folderRepo, fileRepo, testLogger())

	folderRepo.add("a", nil, "a")
	folderRepo.add("b", strPtr("a"), "b")
	folderRepo.add("c", strPtr("a"), "c")
	fileRepo.add("f1", strPtr("b"), "f1.txt", "k1", "text/plain")
	fileRepo.add("f2", strPtr("c"), "f2.txt", "k2", "text/plain")

	tree, err := svc.GetTree(context.Background())
	require.NoError(t, err)

	folderSeen := map[string]int{}
	fileSeen := map[string]int{}
	var walk func(nodes []*models.FolderTreeNode)
	walk = func(nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			folderSeen[n.ID]++
			for _, f := range n.Files {
				fileSeen[f.ID]++
			}
			walk(n.Folders)
		}
	}
	walk(tree.Folders)
	for _, f := range tree.Files {
		fileSeen[f.ID]++
	}
	for id, n := range folderSeen {
		assert.Equal(t, 1, n, "folder %s appears %d times", id, n)
	}
	for id, n := range fileSeen {
		assert.Equal(t, 1, n, "file %s appears %d times", id, n)
	}
	assert.Len(t, folderSeen, 3)
	assert.Len(t, fileSeen, 2)
}

func TestGetTree_DanglingParentDropped(t *testing.T) {
	folderRepo := newFakeFolderRepo()
	fileRepo := newFakeFileRepo()
	svc := NewTreeService(folderRepo, fileRepo, testLogger())

	folderRepo.add("a", nil, "a")
	folderRepo.add("ghost-child", strPtr("vanished"), "ghost-child")
	fileRepo.add("f1", strPtr("vanished"), "f1.txt", "k1", "text/plain")

	tree, err := svc.GetTree(context.Background())
	require.NoError(t, err)

	// Neither the orphaned folder nor the orphaned file surfaces anywhere
	require.Len(t, tree.Folders, 1)
	assert.Equal(t, "a", tree.Folders[0].ID)
	assert.Empty(t, tree.Folders[0].Folders)
	assert.Empty(t, tree.Files)
}

func TestGetTree_Empty(t *testing.T) {
	svc := NewTreeService(newFakeFolderRepo(), newFakeFileRepo(), testLogger())

	tree, err := svc.GetTree(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tree.Folders)
	assert.NotNil(t, tree.Files)
	assert.Empty(t, tree.Folders)
	assert.Empty(t, tree.Files)
}

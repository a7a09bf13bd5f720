package archive

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
	"github.com/ebogdum/archivefs/result"
)

func TestExtSaveDataProvisioning(t *testing.T) {
	sdmc, nand := memfs.New(), memfs.New()
	layout := hostdir.Layout{}
	m := NewManager(Storage{NAND: nand, SDMC: sdmc, Layout: layout}, zaptest.NewLogger(t))

	for _, media := range []backends.MediaType{backends.MediaSDMC, backends.MediaNAND} {
		t.Run(media.String(), func(t *testing.T) {
			fs := sdmc
			if media == backends.MediaNAND {
				fs = nand
			}
			dir, err := layout.ExtSaveDataDir(media, 0, 0x1234)
			require.NoError(t, err)

			require.NoError(t, m.CreateExtSaveData(media, 0, 0x1234))
			info, err := fs.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())

			require.NoError(t, util.WriteFile(fs, dir+"/user/data.bin", []byte("x"), 0644))
			require.NoError(t, m.DeleteExtSaveData(media, 0, 0x1234))
			_, err = fs.Stat(dir)
			assert.Error(t, err, "container removed recursively")

			err = m.DeleteExtSaveData(media, 0, 0x1234)
			assert.Equal(t, result.ErrFileNotFound, result.FromError(err))
		})
	}
}

func TestExtSaveDataUnsupportedMedia(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, result.ErrUnsupportedMedia, result.FromError(m.CreateExtSaveData(backends.MediaGameCard, 0, 1)))
	assert.Equal(t, result.ErrUnsupportedMedia, result.FromError(m.DeleteExtSaveData(backends.MediaType(7), 0, 1)))
}

func TestProvisioningWithoutStorage(t *testing.T) {
	m := NewManager(Storage{}, zaptest.NewLogger(t))

	assert.Equal(t, result.ErrUnsupportedMedia, result.FromError(m.CreateSystemSaveData(0, 1)))
	assert.Equal(t, result.ErrUnsupportedMedia, result.FromError(m.CreateExtSaveData(backends.MediaSDMC, 0, 1)))
}

func TestSystemSaveDataProvisioning(t *testing.T) {
	nand := memfs.New()
	layout := hostdir.Layout{}
	m := NewManager(Storage{NAND: nand, SDMC: memfs.New(), Layout: layout}, zaptest.NewLogger(t))
	dir := layout.SystemSaveDataDir(0, 0x00010026)

	require.NoError(t, m.CreateSystemSaveData(0, 0x00010026))
	require.NoError(t, m.CreateSystemSaveData(0, 0x00010026), "creating twice is harmless")

	info, err := nand.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, m.DeleteSystemSaveData(0, 0x00010026))
	_, err = nand.Stat(dir)
	assert.Error(t, err)

	assert.Equal(t, result.ErrFileNotFound, result.FromError(m.DeleteSystemSaveData(0, 0x00010026)))
}

func TestProvisioningNeedsNoOpenArchive(t *testing.T) {
	m := newTestManager(t)
	require.Equal(t, 0, m.OpenArchives())

	require.NoError(t, m.CreateSystemSaveData(1, 2))
	assert.Equal(t, 0, m.OpenArchives())
}

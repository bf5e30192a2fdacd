package glbackend

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/mogaika/crane/rendercontext"
)

type Texture struct {
	pixels *image.RGBA

	glInited  bool
	glTexture uint32
}

func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %q", path)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return &Texture{pixels: rgba}, nil
}

func (t *Texture) useGL() {
	rendercontext.Use(t)
	if t.glInited {
		return
	}
	t.glInited = true

	size := t.pixels.Rect.Size()
	if size.X == 0 || size.Y == 0 {
		return
	}

	gl.GenTextures(1, &t.glTexture)
	gl.BindTexture(gl.TEXTURE_2D, t.glTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&t.pixels.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	runtime.KeepAlive(t.pixels)
}

func (t *Texture) ClearTempRenderData() {
	if !t.glInited {
		return
	}
	t.glInited = false

	if t.glTexture != 0 {
		gl.DeleteTextures(1, &t.glTexture)
		t.glTexture = 0
	}
}

func (t *Texture) Use() {
	t.useGL()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.glTexture)
}

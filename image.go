//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/enum"
	"github.com/obinnaokechukwu/spgo/event"
	"github.com/obinnaokechukwu/spgo/handle"
	"github.com/obinnaokechukwu/spgo/internal/handles"
	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
)

// ImageFormats is the namespace of sp_imageformat values.
var ImageFormats = enum.FromTable("ImageFormat", map[string]int{
	"UNKNOWN": -1,
	"JPEG":    0,
})

// ImageSizes is the namespace of sp_image_size values.
var ImageSizes = enum.FromTable("ImageSize", map[string]int{
	"NORMAL": 0,
	"SMALL":  1,
	"LARGE":  2,
})

var (
	ImageFormatUnknown = ImageFormats.MustLookup(-1)
	ImageFormatJPEG    = ImageFormats.MustLookup(0)

	ImageSizeNormal = ImageSizes.MustLookup(0)
	ImageSizeSmall  = ImageSizes.MustLookup(1)
	ImageSizeLarge  = ImageSizes.MustLookup(2)
)

// EventImageLoaded is emitted once libspotify reports the image data loaded.
const EventImageLoaded = "loaded"

// Image is a Spotify image, such as an album cover or artist portrait.
//
// An Image owns one reference on its sp_image. Close releases it; otherwise
// it is released when the Image is garbage collected.
type Image struct {
	ref     *handle.Ref[libspotify.Image]
	session *Session
	sig     *loadSignal
	token   handles.Token
	cb      uintptr

	closeOnce sync.Once
}

// WrapImage returns an Image for an sp_image borrowed from another
// libspotify object. A reference is added, so the caller keeps its own.
func WrapImage(sp libspotify.Image) *Image {
	ref := handle.Retain(sp, retainer(native.imageAddRef), releaser("image", native.imageRelease))
	return newImage(ref, nil)
}

// AdoptImage returns an Image for an sp_image whose reference the caller
// already owns, such as the result of sp_image_create.
func AdoptImage(sp libspotify.Image) *Image {
	return newImage(handle.Adopt(sp, releaser("image", native.imageRelease)), nil)
}

// NewImageFromID creates an image from its 20-byte id. If s is nil the
// default session is used.
func NewImageFromID(s *Session, id []byte) (*Image, error) {
	s = sessionOrDefault(s)
	if s == nil {
		return nil, ErrNoSession
	}
	if len(id) != libspotify.ImageIDSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidImageID, len(id))
	}
	sp := native.imageCreate(s.sp, id)
	if sp == nil {
		return nil, errors.New("spgo: sp_image_create returned nil")
	}
	return newImage(handle.Adopt(sp, releaser("image", native.imageRelease)), s), nil
}

func newImage(ref *handle.Ref[libspotify.Image], s *Session) *Image {
	img := &Image{ref: ref, session: s, sig: newLoadSignal()}

	// libspotify keeps the token, not the Image, so the Image can still be
	// collected while a callback is registered.
	img.token = handles.Register(img.sig)
	img.cb = native.imageLoadedCallback()
	code := handle.Use(ref, func(sp libspotify.Image) int32 {
		return native.imageAddLoadCallback(sp, img.cb, uintptr(img.token))
	})
	if code != libspotify.ErrorOK {
		logging.Logger().Warn("image load callback not registered",
			zap.Int32("code", code))
	}

	runtime.SetFinalizer(img, (*Image).Close)
	return img
}

// useImage calls fn with the live sp_image. img stays reachable until fn
// returns, so its finalizer cannot release the handle mid-call.
func useImage[T any](img *Image, fn func(libspotify.Image) T) T {
	defer runtime.KeepAlive(img)
	return handle.Use(img.ref, fn)
}

// IsLoaded reports whether the image data is loaded.
func (img *Image) IsLoaded() bool {
	return useImage(img, native.imageIsLoaded)
}

// Error returns the ErrorType of the image. Check it to see if there were
// problems loading the image.
func (img *Image) Error() (*enum.Const, error) {
	return ErrorType(useImage(img, native.imageError))
}

// Load blocks until the image data is loaded, driving the image's session
// (or the default session) meanwhile. Pass load.Forever to wait without a
// deadline.
func (img *Image) Load(timeout time.Duration) (*Image, error) {
	return load.Until(sessionOrDefault(img.session).waiter(), img, timeout)
}

// LoadedSignal is closed when libspotify reports the image loaded.
func (img *Image) LoadedSignal() <-chan struct{} {
	return img.sig.done
}

// DataFormat returns the ImageFormats constant of the image, or nil if the
// image is not loaded.
func (img *Image) DataFormat() *enum.Const {
	if !img.IsLoaded() {
		return nil
	}
	c, err := ImageFormats.Lookup(int(useImage(img, native.imageFormat)))
	if err != nil {
		return ImageFormatUnknown
	}
	return c
}

// Data returns a copy of the raw image data, or nil if the image is not
// loaded.
func (img *Image) Data() []byte {
	if !img.IsLoaded() {
		return nil
	}
	return useImage(img, native.imageData)
}

// DataURI returns the image as a data: URI. It returns "" if the image is
// not loaded and ErrUnknownImageFormat for anything but JPEG.
func (img *Image) DataURI() (string, error) {
	if !img.IsLoaded() {
		return "", nil
	}
	if f := img.DataFormat(); f != ImageFormatJPEG {
		return "", fmt.Errorf("%w: %v", ErrUnknownImageFormat, f)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img.Data()), nil
}

// ID returns the 20-byte image id.
func (img *Image) ID() []byte {
	return useImage(img, native.imageID)
}

// OnLoaded registers l for EventImageLoaded. It is called from libspotify's
// thread with the bound arguments.
func (img *Image) OnLoaded(l *event.Listener, bound ...any) {
	img.sig.events.On(EventImageLoaded, l, bound...)
}

// OffLoaded unregisters l, or every listener if l is nil.
func (img *Image) OffLoaded(l *event.Listener) {
	img.sig.events.Off(EventImageLoaded, l)
}

// Close removes the load callback and releases the sp_image. It is safe to
// call more than once.
func (img *Image) Close() error {
	img.closeOnce.Do(func() {
		runtime.SetFinalizer(img, nil)
		if !img.ref.Disposed() {
			handle.Use(img.ref, func(sp libspotify.Image) int32 {
				return native.imageRemoveLoadCallback(sp, img.cb, uintptr(img.token))
			})
		}
		handles.Unregister(img.token)
		img.sig.events.Clear()
		_ = img.ref.Close()
	})
	return nil
}

func (img *Image) String() string {
	if img.ref.Disposed() {
		return "Image(closed)"
	}
	return fmt.Sprintf("Image(%x)", img.ID())
}

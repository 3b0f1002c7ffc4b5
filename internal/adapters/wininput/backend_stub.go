//go:build !windows

package wininput

import (
	"fmt"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

type Backend struct{}

func New(logger macro.Logger) (*Backend, error) {
	return nil, fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) ClickKey(macro.Key) error {
	return fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) ClickButton(macro.MouseButton) error {
	return fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) PressedKeys() macro.KeySet {
	return macro.KeySet{}
}

func (b *Backend) Close() error {
	return nil
}

func ListInputDevices() ([]DeviceInfo, error) {
	return nil, fmt.Errorf("windows input backend is only available on Windows")
}

package demo

import (
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop" // registers the empty backend
	"go.trai.ch/zerr"

	"github.com/gogpu/rgraph"
)

// DefaultBackend is the backend opened when none is named.
const DefaultBackend = "empty"

// Device is an open HAL device together with the instance it came from.
type Device struct {
	Backend string
	Adapter string
	Device  hal.Device
	Queue   hal.Queue

	instance hal.Instance
}

// Backends lists the names of the registered HAL backends.
func Backends() []string {
	var names []string
	for _, b := range hal.AvailableBackends() {
		names = append(names, strings.ToLower(b.String()))
	}
	slices.Sort(names)
	return names
}

// OpenDevice opens the first adapter of the named backend.
func OpenDevice(name string) (*Device, error) {
	if name == "" {
		name = DefaultBackend
	}
	var (
		backend hal.Backend
		found   bool
	)
	for _, v := range hal.AvailableBackends() {
		if strings.EqualFold(v.String(), name) {
			backend, found = hal.GetBackend(v)
			break
		}
	}
	if !found {
		err := zerr.With(zerr.Wrap(ErrUnknownBackend, "open device"), "backend", name)
		return nil, zerr.With(err, "available", strings.Join(Backends(), ","))
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Backends: gputypes.BackendsAll})
	if err != nil {
		return nil, zerr.Wrap(err, "create instance")
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, zerr.With(zerr.Wrap(ErrNoAdapter, "open device"), "backend", name)
	}
	exposed := adapters[0]
	opened, err := exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, zerr.Wrap(err, "open adapter")
	}
	rgraph.Logger().Info("demo: device opened", "backend", name, "adapter", exposed.Info.Name)
	return &Device{
		Backend:  strings.ToLower(name),
		Adapter:  exposed.Info.Name,
		Device:   opened.Device,
		Queue:    opened.Queue,
		instance: instance,
	}, nil
}

// Close destroys the device and its instance.
func (d *Device) Close() {
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

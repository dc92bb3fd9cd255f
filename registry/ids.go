// Package registry assigns stable ids to every component, databag, event,
// spawner, system, and system bundle a host registers, and exposes their
// immutable descriptors to the storage, query, and pipeline packages. The
// registry freezes after the first pipeline build: no further
// registrations are accepted, except the dynamic-system reset path.
package registry

import "fmt"

// ComponentKindId identifies a registered component kind. The zero value,
// NoComponent, never names a real registration.
type ComponentKindId uint32

const NoComponent ComponentKindId = 0

func (id ComponentKindId) String() string {
	return fmt.Sprintf("ComponentKindId(%d)", uint32(id))
}

// DatabagKindId identifies a registered databag kind.
type DatabagKindId uint32

const NoDatabag DatabagKindId = 0

func (id DatabagKindId) String() string {
	return fmt.Sprintf("DatabagKindId(%d)", uint32(id))
}

// EventKindId identifies a registered event kind.
type EventKindId uint32

const NoEvent EventKindId = 0

func (id EventKindId) String() string {
	return fmt.Sprintf("EventKindId(%d)", uint32(id))
}

// SpawnerKindId identifies a registered spawner kind.
type SpawnerKindId uint32

const NoSpawner SpawnerKindId = 0

func (id SpawnerKindId) String() string {
	return fmt.Sprintf("SpawnerKindId(%d)", uint32(id))
}

// SystemId identifies a registered system, native or dynamic.
type SystemId uint32

const NoSystem SystemId = 0

func (id SystemId) String() string {
	return fmt.Sprintf("SystemId(%d)", uint32(id))
}

// SystemBundleId identifies a registered system bundle.
type SystemBundleId uint32

const NoSystemBundle SystemBundleId = 0

func (id SystemBundleId) String() string {
	return fmt.Sprintf("SystemBundleId(%d)", uint32(id))
}

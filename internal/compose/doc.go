// Package compose models a compose v1 style application descriptor.
//
// A descriptor maps service names to container configuration:
//
//	db:
//	  image: postgres
//	web:
//	  image: app
//	  links: [db:database]
//	  volumes: [/data]
//
// Services keep their document order, and so do the keys inside a service.
// Every value is either a scalar or a flat sequence of scalars (see Value).
//
// The package provides the descriptor side of the unit pipeline:
//
//   - Validate rejects shapes the generated units cannot express
//   - ApplyOverride layers an override document onto a descriptor
//   - MountVolumes binds bare volumes under a host mount root
//
// ApplyOverride and MountVolumes never modify their input; each returns a new
// Project so the order of the pipeline stays visible at the call site.
package compose

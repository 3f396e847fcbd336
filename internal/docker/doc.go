// Package docker provides a read-only view of the Docker daemon for mooring.
//
// The Client answers the questions the doctor and status commands ask: is
// the daemon reachable, are the images a descriptor references present, and
// which containers belong to a compose project. It never starts, stops or
// removes anything; the generated units own the container lifecycle.
//
// # Interface Abstraction
//
// The API interface abstracts the Docker SDK, enabling mock injection for
// testing. Use NewClientWithAPI for test scenarios.
//
// # Example
//
//	client, err := docker.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	containers, err := client.ProjectContainers(ctx, "myapp")
//	for _, c := range containers {
//	    fmt.Printf("%s: %s\n", c.Name, c.Status)
//	}
package docker

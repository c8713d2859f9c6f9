package util

import "os"

// DockerEnvFile is created by the docker runtime in every container
var DockerEnvFile = "/.dockerenv"

// IsRunningInDocker reports whether the process runs inside a container
func IsRunningInDocker() bool {
	_, err := os.Stat(DockerEnvFile)
	return err == nil
}

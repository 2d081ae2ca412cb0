package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "serialpacket"

// MachineID retrieves an ID identifying the machine. The raw machine ID is
// hashed with the application ID so it isn't exposed over the bridge.
// Falls back to the hostname.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine ID unavailable: %v", err)
		host, _ := os.Hostname()
		return host
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}

package deployment

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether both options hold the same value in every field. Config
// documents compare structurally through their canonical JSON encoding, falling
// back to a deep comparison when they hold values JSON cannot encode.
func (o *DeploymentOptions) Equal(other *DeploymentOptions) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil {
		return false
	}
	if o.worker != other.worker ||
		o.multiThreaded != other.multiThreaded ||
		o.ha != other.ha ||
		o.instances != other.instances ||
		o.redeploy != other.redeploy ||
		o.redeployScanPeriod != other.redeployScanPeriod ||
		o.redeployGracePeriod != other.redeployGracePeriod {
		return false
	}
	if (o.isolationGroup == nil) != (other.isolationGroup == nil) {
		return false
	}
	if o.isolationGroup != nil && *o.isolationGroup != *other.isolationGroup {
		return false
	}
	if !equalClasspath(o.extraClasspath, other.extraClasspath) {
		return false
	}
	return equalDocuments(o.config, other.config)
}

func equalClasspath(a, b []string) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash over every field in declaration order. Options that are
// Equal always hash the same.
func (o *DeploymentOptions) Hash() uint64 {
	if o == nil {
		return 0
	}
	h := xxhash.New()
	var buf [8]byte

	writeBool := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		_, _ = h.WriteString(s)
	}

	config, _ := o.config.canonical()
	writeInt(int64(len(config)))
	_, _ = h.Write(config)
	writeBool(o.worker)
	writeBool(o.multiThreaded)
	writeBool(o.isolationGroup != nil)
	if o.isolationGroup != nil {
		writeString(*o.isolationGroup)
	}
	writeBool(o.ha)
	writeBool(o.extraClasspath != nil)
	writeInt(int64(len(o.extraClasspath)))
	for _, entry := range o.extraClasspath {
		writeString(entry)
	}
	writeInt(int64(o.instances))
	writeBool(o.redeploy)
	writeInt(o.redeployScanPeriod)
	writeInt(o.redeployGracePeriod)

	return h.Sum64()
}

package deployment

import (
	"time"

	"github.com/core-tools/hsu-deploy/pkg/errors"
)

const (
	DefaultWorker              = false
	DefaultMultiThreaded       = false
	DefaultHA                  = false
	DefaultInstances           = 1
	DefaultRedeploy            = false
	DefaultRedeployScanPeriod  = int64(250)  // milliseconds
	DefaultRedeployGracePeriod = int64(1000) // milliseconds
)

// DeploymentOptions describes how a deployment unit is deployed: execution model,
// classpath isolation, instance count, redeploy timing and an opaque config document.
//
// Absent optional values (config, isolation group, extra classpath) are represented as nil.
// Setters mutate in place and return the receiver so calls can be chained. A
// DeploymentOptions is not safe for concurrent mutation; callers sharing one across
// goroutines must synchronize access themselves.
type DeploymentOptions struct {
	config              Document
	worker              bool
	multiThreaded       bool
	isolationGroup      *string
	ha                  bool
	extraClasspath      []string
	instances           int
	redeploy            bool
	redeployScanPeriod  int64
	redeployGracePeriod int64
}

// NewDeploymentOptions returns options with every field at its default.
func NewDeploymentOptions() *DeploymentOptions {
	return &DeploymentOptions{
		worker:              DefaultWorker,
		multiThreaded:       DefaultMultiThreaded,
		ha:                  DefaultHA,
		instances:           DefaultInstances,
		redeploy:            DefaultRedeploy,
		redeployScanPeriod:  DefaultRedeployScanPeriod,
		redeployGracePeriod: DefaultRedeployGracePeriod,
	}
}

// Copy returns an independent copy. The config document is deep-copied and the
// extra classpath is copied into a new slice.
func (o *DeploymentOptions) Copy() *DeploymentOptions {
	if o == nil {
		return nil
	}
	c := *o
	c.config = o.config.Copy()
	if o.isolationGroup != nil {
		group := *o.isolationGroup
		c.isolationGroup = &group
	}
	if o.extraClasspath != nil {
		c.extraClasspath = make([]string, len(o.extraClasspath))
		copy(c.extraClasspath, o.extraClasspath)
	}
	return &c
}

func (o *DeploymentOptions) Config() Document {
	return o.config
}

// SetConfig sets the config document. A nil document marks it absent.
func (o *DeploymentOptions) SetConfig(config Document) *DeploymentOptions {
	o.config = config
	return o
}

func (o *DeploymentOptions) IsWorker() bool {
	return o.worker
}

func (o *DeploymentOptions) SetWorker(worker bool) *DeploymentOptions {
	o.worker = worker
	return o
}

func (o *DeploymentOptions) IsMultiThreaded() bool {
	return o.multiThreaded
}

func (o *DeploymentOptions) SetMultiThreaded(multiThreaded bool) *DeploymentOptions {
	o.multiThreaded = multiThreaded
	return o
}

// IsolationGroup returns the isolation group and whether one is set.
func (o *DeploymentOptions) IsolationGroup() (string, bool) {
	if o.isolationGroup == nil {
		return "", false
	}
	return *o.isolationGroup, true
}

func (o *DeploymentOptions) SetIsolationGroup(isolationGroup string) *DeploymentOptions {
	o.isolationGroup = &isolationGroup
	return o
}

func (o *DeploymentOptions) ClearIsolationGroup() *DeploymentOptions {
	o.isolationGroup = nil
	return o
}

func (o *DeploymentOptions) IsHA() bool {
	return o.ha
}

func (o *DeploymentOptions) SetHA(ha bool) *DeploymentOptions {
	o.ha = ha
	return o
}

func (o *DeploymentOptions) ExtraClasspath() []string {
	return o.extraClasspath
}

// SetExtraClasspath stores the slice as given, without copying. Nil marks it absent.
func (o *DeploymentOptions) SetExtraClasspath(extraClasspath []string) *DeploymentOptions {
	o.extraClasspath = extraClasspath
	return o
}

func (o *DeploymentOptions) Instances() int {
	return o.instances
}

// SetInstances accepts any value; range checks belong to whoever deploys the unit.
func (o *DeploymentOptions) SetInstances(instances int) *DeploymentOptions {
	o.instances = instances
	return o
}

func (o *DeploymentOptions) IsRedeploy() bool {
	return o.redeploy
}

func (o *DeploymentOptions) SetRedeploy(redeploy bool) *DeploymentOptions {
	o.redeploy = redeploy
	return o
}

// RedeployScanPeriod returns the redeploy scan period in milliseconds.
func (o *DeploymentOptions) RedeployScanPeriod() int64 {
	return o.redeployScanPeriod
}

// RedeployScanInterval returns the redeploy scan period as a duration.
func (o *DeploymentOptions) RedeployScanInterval() time.Duration {
	return time.Duration(o.redeployScanPeriod) * time.Millisecond
}

// SetRedeployScanPeriod sets the scan period in milliseconds. Values below 1 are
// rejected with an invalid argument error and the current value is kept.
func (o *DeploymentOptions) SetRedeployScanPeriod(redeployScanPeriod int64) (*DeploymentOptions, error) {
	if err := validatePeriod(fieldRedeployScanPeriod, redeployScanPeriod); err != nil {
		return o, err
	}
	o.redeployScanPeriod = redeployScanPeriod
	return o, nil
}

// RedeployGracePeriod returns the redeploy grace period in milliseconds.
func (o *DeploymentOptions) RedeployGracePeriod() int64 {
	return o.redeployGracePeriod
}

// RedeployGraceInterval returns the redeploy grace period as a duration.
func (o *DeploymentOptions) RedeployGraceInterval() time.Duration {
	return time.Duration(o.redeployGracePeriod) * time.Millisecond
}

// SetRedeployGracePeriod sets the grace period in milliseconds. Values below 1 are
// rejected with an invalid argument error and the current value is kept.
func (o *DeploymentOptions) SetRedeployGracePeriod(redeployGracePeriod int64) (*DeploymentOptions, error) {
	if err := validatePeriod(fieldRedeployGracePeriod, redeployGracePeriod); err != nil {
		return o, err
	}
	o.redeployGracePeriod = redeployGracePeriod
	return o, nil
}

func validatePeriod(field string, value int64) error {
	if value < 1 {
		return errors.NewInvalidArgumentError(field+" must be > 0", nil).
			WithContext("field", field).
			WithContext("value", value)
	}
	return nil
}

// String returns the compact JSON form.
func (o *DeploymentOptions) String() string {
	data, err := o.ToJSON()
	if err != nil {
		return "<invalid deployment options: " + err.Error() + ">"
	}
	return string(data)
}

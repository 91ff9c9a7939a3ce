package deployment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/core-tools/hsu-deploy/pkg/errors"
)

// Document keys. Names are case sensitive.
const (
	fieldConfig              = "config"
	fieldWorker              = "worker"
	fieldMultiThreaded       = "multiThreaded"
	fieldIsolationGroup      = "isolationGroup"
	fieldHA                  = "ha"
	fieldExtraClasspath      = "extraClasspath"
	fieldInstances           = "instances"
	fieldRedeploy            = "redeploy"
	fieldRedeployScanPeriod  = "redeployScanPeriod"
	fieldRedeployGracePeriod = "redeployGracePeriod"
)

// ToDocument exports the options in compact form: fields still at their default are
// left out, booleans appear only when true, and config, isolationGroup and
// extraClasspath appear whenever present. The result shares no state with o.
func (o *DeploymentOptions) ToDocument() map[string]interface{} {
	doc := make(map[string]interface{})
	if o.worker {
		doc[fieldWorker] = true
	}
	if o.multiThreaded {
		doc[fieldMultiThreaded] = true
	}
	if o.isolationGroup != nil {
		doc[fieldIsolationGroup] = *o.isolationGroup
	}
	if o.ha {
		doc[fieldHA] = true
	}
	if o.config != nil {
		doc[fieldConfig] = copyMap(o.config)
	}
	if o.extraClasspath != nil {
		doc[fieldExtraClasspath] = copyValue(o.extraClasspath)
	}
	if o.instances != DefaultInstances {
		doc[fieldInstances] = o.instances
	}
	if o.redeploy != DefaultRedeploy {
		doc[fieldRedeploy] = o.redeploy
	}
	if o.redeployScanPeriod != DefaultRedeployScanPeriod {
		doc[fieldRedeployScanPeriod] = o.redeployScanPeriod
	}
	if o.redeployGracePeriod != DefaultRedeployGracePeriod {
		doc[fieldRedeployGracePeriod] = o.redeployGracePeriod
	}
	return doc
}

// FromDocument builds options from a decoded document. Missing keys, null values and
// wrongly shaped boolean, string, object or array values take the field default;
// unknown keys are ignored. The config object is copied. Numeric fields that cannot be read as integers, classpath
// entries that are not strings, and redeploy periods below 1 fail with a
// deserialization error.
func FromDocument(doc map[string]interface{}) (*DeploymentOptions, error) {
	o := NewDeploymentOptions()
	if doc == nil {
		return o, nil
	}

	if config, ok := objectValue(doc[fieldConfig]); ok {
		o.config = config
	}
	o.worker = boolValue(doc, fieldWorker, DefaultWorker)
	o.multiThreaded = boolValue(doc, fieldMultiThreaded, DefaultMultiThreaded)
	if group, ok := doc[fieldIsolationGroup].(string); ok {
		o.isolationGroup = &group
	}
	o.ha = boolValue(doc, fieldHA, DefaultHA)

	classpath, err := stringsValue(doc[fieldExtraClasspath])
	if err != nil {
		return nil, err
	}
	o.extraClasspath = classpath

	instances, err := intValue(doc, fieldInstances, DefaultInstances)
	if err != nil {
		return nil, err
	}
	if instances < math.MinInt32 || instances > math.MaxInt32 {
		return nil, errors.NewDeserializationError(
			fmt.Sprintf("%s out of range: %d", fieldInstances, instances), nil,
		).WithContext("field", fieldInstances)
	}
	o.instances = int(instances)

	o.redeploy = boolValue(doc, fieldRedeploy, DefaultRedeploy)

	scan, err := intValue(doc, fieldRedeployScanPeriod, DefaultRedeployScanPeriod)
	if err != nil {
		return nil, err
	}
	if _, err := o.SetRedeployScanPeriod(scan); err != nil {
		return nil, errors.NewDeserializationError("invalid "+fieldRedeployScanPeriod, err).
			WithContext("field", fieldRedeployScanPeriod)
	}

	grace, err := intValue(doc, fieldRedeployGracePeriod, DefaultRedeployGracePeriod)
	if err != nil {
		return nil, err
	}
	if _, err := o.SetRedeployGracePeriod(grace); err != nil {
		return nil, errors.NewDeserializationError("invalid "+fieldRedeployGracePeriod, err).
			WithContext("field", fieldRedeployGracePeriod)
	}

	return o, nil
}

// ToJSON returns the compact JSON encoding.
func (o *DeploymentOptions) ToJSON() ([]byte, error) {
	return json.Marshal(o.ToDocument())
}

// FromJSON decodes options from a JSON object. Numbers are kept as json.Number so
// integers beyond 2^53 survive, in the periods and in config alike.
func FromJSON(data []byte) (*DeploymentOptions, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc map[string]interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.NewDeserializationError("invalid deployment options JSON", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after JSON object")
		}
		return nil, errors.NewDeserializationError("invalid deployment options JSON", err)
	}
	return FromDocument(doc)
}

func (o *DeploymentOptions) MarshalJSON() ([]byte, error) {
	return o.ToJSON()
}

// UnmarshalJSON replaces every field of o, resetting absent keys to their defaults.
func (o *DeploymentOptions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

func boolValue(doc map[string]interface{}, key string, def bool) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return def
}

// objectValue returns a private copy of an object value with string keys throughout.
func objectValue(v interface{}) (Document, bool) {
	switch value := v.(type) {
	case Document:
		return value.Copy(), value != nil
	case map[string]interface{}:
		return Document(value).Copy(), value != nil
	case map[interface{}]interface{}:
		if value == nil {
			return nil, false
		}
		return Document(copyKeyedMap(value)), true
	}
	return nil, false
}

func stringsValue(v interface{}) ([]string, error) {
	switch value := v.(type) {
	case []string:
		return value, nil
	case []interface{}:
		out := make([]string, len(value))
		for i, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, errors.NewDeserializationError(
					fmt.Sprintf("%s[%d] is not a string", fieldExtraClasspath, i), nil,
				).WithContext("field", fieldExtraClasspath).WithContext("value", item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, nil
}

// intValue reads an integral number. JSON numbers and Go integer types are accepted;
// fractions, strings and anything else are deserialization errors.
func intValue(doc map[string]interface{}, key string, def int64) (int64, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return def, nil
	}

	fail := func(cause error) (int64, error) {
		return 0, errors.NewDeserializationError(
			fmt.Sprintf("%s must be an integer, got %v", key, raw), cause,
		).WithContext("field", key).WithContext("value", raw)
	}

	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintValue(uint64(v), fail)
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintValue(v, fail)
	case float32:
		return floatValue(float64(v), fail)
	case float64:
		return floatValue(v, fail)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return fail(err)
		}
		return floatValue(f, fail)
	default:
		return fail(nil)
	}
}

func uintValue(v uint64, fail func(error) (int64, error)) (int64, error) {
	if v > math.MaxInt64 {
		return fail(nil)
	}
	return int64(v), nil
}

func floatValue(v float64, fail func(error) (int64, error)) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return fail(nil)
	}
	return int64(v), nil
}

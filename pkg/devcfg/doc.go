// Package devcfg loads model-capability configuration for gateway
// sub-devices.
//
// A model configuration describes what a given device model exposes: its
// properties (with defaults, retrieval method and optional divisor), the
// setter command used for writes, the push events the model can emit, and
// whether the device is battery powered. Configurations are external YAML
// data, one document per model:
//
//	model: lumi.sensor_ht.v1
//	name: Temperature sensor
//	type: Sensor
//	zigbee_id: lumi.sensor_ht
//	properties:
//	  - property: temperature
//	    get: get_property_exp
//	    divisor: 100
//	  - property: humidity
//	    get: get_property_exp
//	    divisor: 100
//	push_properties:
//	  battery_low:
//	    property: battery_low
//	    value: true
//	    extra: "[1,3,1,85,[0,1],0,0]"
//
// Property order and push-event declaration order are load-bearing: batched
// property fetches return positional results, and events are subscribed in
// declaration order. The loader preserves document order for both.
package devcfg

// Package factory builds pluggable components from their configuration
// blocks. A component is named by a type string and carries an untyped
// settings map; the registered constructor decodes those settings into
// its own config struct and returns the concrete value. The metrics
// sinks are wired this way, one constructor per sink type.
//
// A constructor typically looks like:
//
//	reg := factory.NewRegistry[MetricsSink]()
//	reg.Register("influxdb", func(conf map[string]any) (MetricsSink, error) {
//	    var c influxConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c)
//	})
package factory

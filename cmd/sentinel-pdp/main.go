// Command sentinel-pdp is an XACML 3.0 policy decision point.
package main

import "github.com/Sentinel-Gate/Sentinelpdp/cmd/sentinel-pdp/cmd"

func main() {
	cmd.Execute()
}

// Package policy gates evaluation results with Rego policies run on an
// embedded Open Policy Agent engine.
//
// Every result is converted to plain data and passed as the policy input
// together with the program source and the result's type name. The decision
// document at the configured entrypoint chooses between allowing and
// blocking the result.
package policy

// Package framework contains the low-level implementation of test harness infrastructure
// that does not know anything about the service being tested.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Failures are contained at the test boundary: an assertion
// failure, a transport error, a failed setup step, or even a panic inside one test is
// recorded for that test and the run continues with the next one.
//
// 2. Every recorded failure is classified (see FailureKind), so that callers can tell an
// unexpected response apart from a service that could not be reached at all.
//
// 3. Test output goes through a TestLogger, and per-test debug output is captured so that
// it can be shown only for the tests where it matters.
//
// The domain-specific code that knows what is being tested is responsible for issuing the
// requests and providing a domain-specific test API on top of the test context.
package framework

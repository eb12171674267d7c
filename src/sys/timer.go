package sys

import "time"

/// USEC_PER_SEC converts the timer's microsecond counter to seconds.
const USEC_PER_SEC = 1000000

var boot = time.Now()

/// Get_time_us returns microseconds since boot. The SBI timer driver
/// is an external collaborator; the hosted model counts wall time.
func Get_time_us() int {
	return int(time.Since(boot).Microseconds())
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package status classifies the outcome of each file seen during ingestion.

	            +-------------+
	            |   Record    |
	            | (per path)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  Summary  |           | Format  |
	| (counters)|           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Names every skip category (excluded, not-included, too-large, binary, error, digest-full)
- Keeps the categories mutually exclusive: a record has exactly one Status
- Aggregates records into a Summary with a counter per category
- Formats records and summaries for the console

🔍 Example:

	var s status.Summary
	for _, r := range result.Records {
		s.Add(r)
		fmt.Println(status.FormatRecord(r))
	}
	fmt.Println(status.FormatSummary(s))
*/
package status

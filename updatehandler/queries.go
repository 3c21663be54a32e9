package updatehandler

import (
	"fmt"
	"strings"
)

func existsQuery(uri string, relatedTypes []string) string {
	return fmt.Sprintf(
		"ASK { <%s> a ?type . FILTER(?type IN (%s)) . }",
		uri, typeList(relatedTypes),
	)
}

func typeList(relatedTypes []string) string {
	quoted := make([]string, len(relatedTypes))
	for i, t := range relatedTypes {
		quoted[i] = "<" + t + ">"
	}
	return strings.Join(quoted, ", ")
}

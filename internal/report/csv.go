package report

import (
	"fmt"
	"strings"
)

// RenderCSV renders candidate rows as a CSV string.
func RenderCSV(rows []Row) string {
	var sb strings.Builder

	sb.WriteString("path,venues,rate_product,amount_in,amount_out,profit,max_impact\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%.6f\n",
			r.Path,
			strings.ReplaceAll(r.Venues, ",", ";"),
			r.RateProduct.String(),
			r.AmountIn,
			r.AmountOut,
			r.Profit,
			r.MaxImpact,
		))
	}

	return sb.String()
}

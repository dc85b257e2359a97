package analytics

// latestEligibilitySQL keeps, per item, the row with the newest timestamp.
const latestEligibilitySQL = `
	SELECT DISTINCT item_id, eligibility
	FROM eligibility
	WHERE eligibility_datetime_utc = (
		SELECT MAX(eligibility_datetime_utc)
		FROM eligibility e2
		WHERE e2.item_id = eligibility.item_id
	)`

const salesMetricsSQL = `
SELECT
	SUM(total_sales) AS total_revenue,
	SUM(total_units_ordered) AS total_units,
	COUNT(DISTINCT item_id) AS active_products,
	AVG(total_sales) AS avg_sales_per_transaction,
	COUNT(DISTINCT date) AS active_days
FROM total_sales
WHERE total_sales > 0`

const adMetricsSQL = `
SELECT
	SUM(ad_sales) AS total_ad_revenue,
	SUM(ad_spend) AS total_ad_spend,
	SUM(impressions) AS total_impressions,
	SUM(clicks) AS total_clicks,
	SUM(units_sold) AS total_ad_units,
	CASE WHEN SUM(ad_spend) > 0 THEN SUM(ad_sales) / SUM(ad_spend) ELSE 0 END AS overall_roas,
	CASE WHEN SUM(clicks) > 0 THEN SUM(ad_spend) / SUM(clicks) ELSE 0 END AS avg_cpc,
	CASE WHEN SUM(impressions) > 0 THEN SUM(clicks) * 100.0 / SUM(impressions) ELSE 0 END AS overall_ctr,
	CASE WHEN SUM(clicks) > 0 THEN SUM(units_sold) * 100.0 / SUM(clicks) ELSE 0 END AS overall_conversion_rate
FROM ad_sales
WHERE ad_spend > 0`

const eligibilityMetricsSQL = `
SELECT
	SUM(CASE WHEN eligibility = 'TRUE' THEN 1 ELSE 0 END) AS eligible_products,
	COUNT(*) AS total_products_checked,
	CASE
		WHEN COUNT(*) > 0 THEN SUM(CASE WHEN eligibility = 'TRUE' THEN 1 ELSE 0 END) * 100.0 / COUNT(*)
		ELSE 0
	END AS eligibility_rate
FROM (` + latestEligibilitySQL + `
) latest_eligibility`

// productPerformanceSQL aggregates each source table per item before joining
// so ad rows are not multiplied by the number of sales days.
const productPerformanceSQL = `
SELECT
	ts.item_id,
	ts.total_revenue,
	ts.total_units,
	COALESCE(ads.ad_revenue, 0) AS ad_revenue,
	COALESCE(ads.ad_spend, 0) AS ad_spend,
	COALESCE(ads.impressions, 0) AS impressions,
	COALESCE(ads.clicks, 0) AS clicks,
	COALESCE(ads.ad_units, 0) AS ad_units,
	CASE WHEN ads.ad_spend > 0 THEN ads.ad_revenue / ads.ad_spend ELSE 0 END AS roas,
	CASE WHEN ads.clicks > 0 THEN ads.ad_spend / ads.clicks ELSE 0 END AS cpc,
	CASE WHEN ads.impressions > 0 THEN ads.clicks * 100.0 / ads.impressions ELSE 0 END AS ctr,
	CASE WHEN ads.clicks > 0 THEN ads.ad_units * 100.0 / ads.clicks ELSE 0 END AS conversion_rate,
	e.eligibility AS is_eligible
FROM (
	SELECT item_id, SUM(total_sales) AS total_revenue, SUM(total_units_ordered) AS total_units
	FROM total_sales
	WHERE total_sales > 0
	GROUP BY item_id
) ts
LEFT JOIN (
	SELECT
		item_id,
		SUM(ad_sales) AS ad_revenue,
		SUM(ad_spend) AS ad_spend,
		SUM(impressions) AS impressions,
		SUM(clicks) AS clicks,
		SUM(units_sold) AS ad_units
	FROM ad_sales
	GROUP BY item_id
) ads ON ts.item_id = ads.item_id
LEFT JOIN (` + latestEligibilitySQL + `
) e ON ts.item_id = e.item_id
ORDER BY ts.total_revenue DESC, ts.item_id
LIMIT %d`

const dailySalesSQL = `
SELECT
	date,
	SUM(total_sales) AS daily_sales,
	SUM(total_units_ordered) AS daily_units,
	COUNT(DISTINCT item_id) AS active_products
FROM total_sales
WHERE total_sales > 0
GROUP BY date
ORDER BY date DESC
LIMIT %d`

const dailyAdSQL = `
SELECT
	date,
	SUM(ad_sales) AS daily_ad_sales,
	SUM(ad_spend) AS daily_ad_spend,
	SUM(impressions) AS daily_impressions,
	SUM(clicks) AS daily_clicks,
	CASE WHEN SUM(ad_spend) > 0 THEN SUM(ad_sales) / SUM(ad_spend) ELSE 0 END AS daily_roas
FROM ad_sales
WHERE ad_spend > 0
GROUP BY date
ORDER BY date DESC
LIMIT %d`

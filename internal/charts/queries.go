package charts

const salesTrendSQL = `
SELECT date, SUM(total_sales) AS daily_sales, SUM(total_units_ordered) AS daily_units
FROM total_sales
WHERE total_sales > 0
GROUP BY date
ORDER BY date`

const topProductsSQL = `
SELECT item_id, SUM(total_sales) AS total_product_sales, SUM(total_units_ordered) AS total_units
FROM total_sales
WHERE total_sales > 0
GROUP BY item_id
ORDER BY total_product_sales DESC
LIMIT %d`

const roasSQL = `
SELECT
	item_id,
	SUM(ad_sales) AS total_ad_sales,
	SUM(ad_spend) AS total_ad_spend,
	CASE
		WHEN SUM(ad_spend) > 0 THEN SUM(ad_sales) / SUM(ad_spend)
		ELSE 0
	END AS roas
FROM ad_sales
WHERE ad_spend > 0 AND ad_sales > 0
GROUP BY item_id
ORDER BY roas DESC
LIMIT %d`

const eligibilitySQL = `
SELECT
	eligibility,
	COUNT(*) AS count
FROM (
	SELECT DISTINCT item_id, eligibility
	FROM eligibility
	WHERE eligibility_datetime_utc = (
		SELECT MAX(eligibility_datetime_utc)
		FROM eligibility e2
		WHERE e2.item_id = eligibility.item_id
	)
) latest_eligibility
GROUP BY eligibility
ORDER BY eligibility DESC`

const adPerformanceSQL = `
SELECT
	item_id,
	SUM(ad_spend) AS total_spend,
	SUM(clicks) AS total_clicks,
	SUM(units_sold) AS total_conversions,
	CASE
		WHEN SUM(clicks) > 0 THEN SUM(ad_spend) * 1.0 / SUM(clicks)
		ELSE 0
	END AS cpc,
	CASE
		WHEN SUM(clicks) > 0 THEN SUM(units_sold) * 100.0 / SUM(clicks)
		ELSE 0
	END AS conversion_rate
FROM ad_sales
WHERE clicks > 0 AND ad_spend > 0
GROUP BY item_id
HAVING SUM(ad_spend) > 10
ORDER BY item_id`

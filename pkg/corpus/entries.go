package corpus

import (
	"fmt"

	"finance-chatbot-be/pkg/store"
)

// knowledgeBase returns the static First Finance knowledge entries. Ordering
// is significant: the ranker breaks exact score ties first-seen-wins.
func knowledgeBase() []*Entry {
	return []*Entry{
		{
			Category: "greetings",
			Triggers: []string{"hi", "hello", "hey", "مرحبا", "اهلا"},
			Response: Static("Hello! I'm Hadi, your virtual assistant at First Finance Qatar. How can I help you today?"),
		},
		{
			Category: "company_info",
			Triggers: []string{"about", "who are you", "first finance", "من أنتم", "عن الشركة"},
			Response: Static(`**First Finance Company**
Established in November 1999, First Finance Company was the first finance company in Qatar to be regulated by the Qatar Central Bank. The company started with QAR 50 million share capital, which rose to QAR 639 million by 2009.

In 2010, Dukhan Bank acquired 100% of the company's shares.

**Quality Policy:** ISO 9001:2015 standards, Shariah-compliant services.

All services are **100% Shariah-compliant**.`),
		},
		{
			Category: "contact",
			Triggers: []string{"contact", "phone", "call", "location", "اتصال", "رقم"},
			Response: Static(`**Get in Touch**
- **Call:** +974 4455 9999
- **Email:** info@ffcqatar.com
- **Website:** https://ffcqatar.com

**Branches:**
- Main Branch: C-Ring Road, Building 321 – next to Turkish Hospital
- Mawater Branch: Umm Ghuwailina

**Live Chat & App:** Available 24/7`),
		},
		{
			Category: "app_guide",
			Triggers: []string{"mobile app", "app", "how to use app", "download app", "application process", "apply online", "تطبيق", "تحميل"},
			Response: Static(`**Apply in 3 Easy Ways**

**Mobile App (Recommended)** — FFC Online on the App Store and Google Play.

**Website:** Apply online 24/7 at https://ffcqatar.com

**Visit a Branch:**
- Main Branch: C Ring Road
- Mawater Branch: Umm Ghuwailina

All applications are 100% Shariah-compliant.`),
		},
		{
			Category: "vehicle_finance",
			Triggers: []string{"car loan", "vehicle loan", "vehicle finance", "personal car finance", "new car", "used car", "motorcycle", "تمويل مركبات"},
			Response: Computed(vehicleFinanceResponse),
		},
		{
			Category: "personal_finance",
			Triggers: []string{"personal finance", "personal loan", "retail loan", "تمويل شخصي"},
			Response: Computed(personalFinanceResponse),
		},
		{
			Category: "real_estate_finance",
			Triggers: []string{"real estate", "housing", "home finance", "property", "lusail", "pearl", "west bay", "سكن", "عقار"},
			Response: Static(`**Housing Finance**

**Key Features:**
- Tenure: Up to 15 years
- Down payment: 30%
- Grace period: Available
- No admin fees
- Freehold areas only (The Pearl, Lusail, West Bay)

**Contract Type:** Ijara or Murabaha

**Required Documents:**
- Property title deed
- 2 valuation reports (QCB-approved)
- 6-month bank statement`),
		},
		{
			Category: "travel_finance",
			Triggers: []string{"travel finance", "travel loan", "holiday", "vacation", "umrah", "سفر", "عمرة"},
			Response: Static(`**Travel & Umrah Finance**

**Eligibility:**
- Minimum salary: 10,000 QAR
- Maximum finance: 50,000 QAR
- Tenure: Up to 24 months
- Grace period: Up to 1 month
- Down payment: 10%

**Required Documents:**
- Flight/hotel/package quotation
- Salary certificate + bank statement
- Security cheques

**Shariah Contract:** Murabaha`),
		},
		{
			Category: "marine_finance",
			Triggers: []string{"marine", "boat", "yacht", "jet ski", "مارين", "يخت"},
			Response: Static(`**Marine Finance**

**For Qatari Nationals:**
- Up to 2,000,000 QAR
- Up to 72 months + 3 months grace
- No down payment or collateral required

**For Expats/Residents:**
- Up to 400,000 QAR
- Up to 48 months + 3 months grace
- Marine craft as collateral

**Takaful insurance included**
100% Shariah-compliant`),
		},
		{
			Category: "islamic_contracts",
			Triggers: []string{"shariah", "islamic", "murabaha", "ijara", "contract", "musawamah", "عقود", "مرابحة", "إجارة"},
			Response: Static(`**Shariah-Compliant Contracts**

- **Murabaha** → Cost-plus sale (vehicles, goods, travel)
- **Ijara** → Leasing with ownership (housing)
- **Musawamah** → Asset bought and sold at an agreed price
- **Bay al-Manfaah** → Selling the right to benefit from a service

**Approved by Shariah Board:** No interest (Riba), no uncertainty (Gharar), no gambling (Maysir)`),
		},
		{
			Category: "working_hours",
			Triggers: []string{"working hours", "open", "branch hours", "work hours", "hours", "مواعيد", "دوام"},
			Response: Static(`**Branch Working Hours**

**Main Branch (C Ring Road):**
Sun – Wed: 7:30 AM – 7:00 PM
Thursday: 7:30 AM – 2:30 PM
Saturday: 8:00 AM – 1:00 PM
Friday: Closed

**Mawater Branch:**
Sun – Thu: 4:30 PM – 9:30 PM
Saturday: 4:30 PM – 7:00 PM
Friday: Closed

**App & Website:** 24/7`),
		},
		{
			Category: "company_accreditation",
			Triggers: []string{"company accreditation", "accreditation", "non-accredited company", "accreditation documents", "accreditation requirements"},
			Response: Static(`**Company Accreditation (Individual Financing)**

**Levels of Accreditation:**
1. **Governmental & Semi-Gov / Listed on QSE** → Automatically accredited.
2. **Non-accredited (Personal/Car Loans > 150,000 QAR)** → Required: Accreditation form, national address certificate, last 2 audited financial statements, commercial registration/license, owner(s) ID.
3. **Non-accredited (Car Loans < 150,000 QAR)** → Required: CR/license/ID, company ≥ 3 years established.

**Resident Eligibility:**
- Employment ≥ 1 year
- No returned cheques in last 6 months
- Maximum financing 150,000 QAR`),
		},
		{
			Category: "after_sales_services",
			Triggers: []string{"after sales", "collections", "liability certificate", "vehicle lien release", "replace cheque", "vehicle export", "property mortgage"},
			Response: Static(`**After-Sales Services**

Services provided by the Collections Department include:
- Liability / Replacement Certificates
- Vehicle Lien Release
- Traffic Department letters
- Deregistration / title transfer
- Payment changes
- Cheque replacements
- Property mortgage release
- Vehicle export`),
		},
		{
			Category: "services_finance_qatari",
			Triggers: []string{"services finance qatar", "healthcare finance qatar", "education finance qatar", "wedding finance qatar", "تمويل خدمات قطري"},
			Response: Static(`**Services Finance (Qatari Citizens – Salary-Based)**

**Main Features**
1. Repayment period up to 72 months, including grace period up to 3 months
2. No administrative fees
3. Max debt-to-salary ratio ≤ 75% of total basic salary + social allowance
4. Max finance: 2,000,000 QAR (including profit)
5. Takaful insurance included
6. Age: 18–65 years
7. Qatari trainee requires guarantor or min 3-month training contract

**Required Documents**
1. Recent salary certificate
2. Original personal ID
3. Bank statement (last 3 months, stamped)
4. Alternative payment cheques
5. National address certificate`),
		},
		{
			Category: "housing_finance_qatari",
			Triggers: []string{"housing finance qatar", "real estate finance qatar", "apartment finance qatar", "villa finance qatar", "تمويل سكني قطري"},
			Response: Static(`**Housing/Real Estate Finance (Qatari Citizens)**

**Main Features**
1. Repayment period up to 15 years (180 months)
2. Grace period at beginning based on credit approval
3. No administrative fees
4. Down payment ≥ 30%
5. Mortgage on financed property
6. Age: 18–75 years

**Required Documents**
1. Recent salary certificate
2. Original personal ID
3. Bank statement (last 6 months, stamped)
4. Copy of property ownership deed with plan
5. Property appraisal from two certified appraisal offices`),
		},
		{
			Category: "corporate_finance_general",
			Triggers: []string{"corporate finance intro", "about corporate finance", "تمويل الشركات", "company finance overview"},
			Response: Static(`**About Corporate Finance**
First Finance provides innovative Sharia-compliant solutions for both Qatari and non-Qatari companies to secure liquidity for projects, working capital, and operating expenses.

**Corporate Finance Products**
1. Commodities Finance
2. Goods Finance
3. Vehicle & Equipment / Fleet Financing (Wholesale)
4. Corporate Revolving Credit Product

**Qatari Company Definition:** Local company owned >50% by Qatari nationals.

**Non-Qatari Companies:** No difference in features or profit rates; mandatory real estate or cash collateral covering ≥80% of indebtedness, or a creditworthy Qatari guarantor.`),
		},
		{
			Category: "corporate_commodities_finance",
			Triggers: []string{"commodities finance", "تمويل سلع", "metal finance", "qatar commodities finance"},
			Response: Static(`**Commodities Finance (Corporate Finance)**

**Main Features:**
1. Longest repayment period suiting activity/financing
2. Grace period at beginning of financing (subject to credit approval)
3. No administrative fees
4. Financing tailored to scale of activity & request
5. Takaful Insurance

**Required Documents:**
1. Last 3 audited financial statements or internal company financials
2. Recent valid commercial registration + trade license
3. Bank statement for last 6 months, stamped & signed
4. Original ID cards of partners
5. Real estate or cash collateral covering 80% of indebtedness, or a Qatari guarantor`),
		},
		{
			Category: "corporate_goods_finance",
			Triggers: []string{"goods finance", "تمويل بضائع", "company goods finance", "import finance"},
			Response: Static(`**Goods Finance (Corporate Finance)**

**Main Features:**
1. Repayment up to 36 months including grace period
2. Ability to purchase goods domestically & internationally
3. Grace period at start based on credit approval
4. No administrative fees
5. Takaful Insurance

**Required Documents:**
1. Last 3 audited financial statements or internal company financials
2. Recent valid commercial registration + license
3. Bank statement for last 6 months, stamped & signed
4. Quotation addressed to First Finance Company`),
		},
		{
			Category: "corporate_vehicle_equipment_finance",
			Triggers: []string{"fleet finance", "vehicle financing", "equipment financing", "تمويل مركبات شركات", "wholesale finance"},
			Response: Static(`**Vehicle & Equipment / Fleet Financing (Wholesale)**

**Main Features:**
1. Repayment up to 60 months including grace period
2. Grace period at beginning based on credit approval
3. No administrative fees
4. Lien on vehicles & equipment financed
5. Takaful Insurance

**Required Documents:**
1. Last 3 audited financial statements or internal financials
2. Recent valid commercial registration + license
3. Bank statement last 6 months, stamped & signed
4. Quotation addressed to First Finance Company
5. Real estate or cash collateral covering 80% of indebtedness, or Qatari guarantor`),
		},
		{
			Category: "corporate_revolving_credit",
			Triggers: []string{"revolving credit", "credit limit", "تمويل ائتماني متجدد"},
			Response: Static(`**Corporate Revolving Credit Product**

**Main Features:**
1. Obtain revolving credit limit valid for a specified period (e.g., 1 year)
2. Withdraw multiple times based on business needs
3. Profits calculated only on used amount

**Required Documents:**
Depending on type of credit limit and financing requirements. Contact your FFC relationship manager for details.`),
		},
		{
			Category: "profit_rates",
			Triggers: []string{
				"profit rate", "profit rates", "profit", "interest rate", "interest",
				"financing rate", "finance rate", "how much profit", "what is the rate",
				"murabaha profit", "cost of finance", "profit percentage", "profit margin",
			},
			Response: Static("The current profit rates at First Finance Company are determined by a set of credit policy matrix controls. For precise rates, you would need to visit a branch or contact the First Finance Company call center. Please note that all services provided by First Finance Company are Shari'a-compliant financial services."),
		},
	}
}

func vehicleFinanceResponse(facts store.ApplicantFacts) string {
	if facts.Nationality == "" {
		facts.Nationality = store.NationalityQatari
	}
	maxFinance := 400000
	maxTenure := 48
	dbRatio := 0.5
	needsGuarantor := true
	minSalary := "5,000 QAR"
	maxAge := 60

	if facts.Nationality == store.NationalityQatari {
		maxFinance = 2000000
		maxTenure = 72
		dbRatio = 0.75
		needsGuarantor = facts.JobDurationMonths < 3
		minSalary = "None"
		maxAge = 65
	}

	guarantorText := "No guarantor required."
	if needsGuarantor {
		guarantorText = "A guarantor is required."
	}

	return fmt.Sprintf(`**Vehicle Finance Details (%s)**

- Max financing limit: %s QAR
- Repayment period: Up to %d months + 3 months grace
- Debt-to-salary ratio: ≤ %.0f%%
- Minimum salary: %s
- Age: 18 – %d
- %s

**Required Documents:**
- Recent salary certificate
- Original ID + passport
- Bank statement (last 3 months)
- Alternative payment cheques
- National address certificate
- Price offer directed to First Finance Company
- Vehicle inspection report (for used vehicles)

All services are fully **Shariah-compliant**.`,
		facts.Nationality, formatQAR(maxFinance), maxTenure, dbRatio*100, minSalary, maxAge, guarantorText)
}

func personalFinanceResponse(facts store.ApplicantFacts) string {
	if facts.Nationality == "" {
		facts.Nationality = store.NationalityQatari
	}
	maxFinance := 200000
	dbRatio := 0.5
	guarantorText := "A Qatari guarantor is required."

	if facts.Nationality == store.NationalityQatari {
		maxFinance = 2000000
		dbRatio = 0.75
		guarantorText = "No guarantor required."
	}

	return fmt.Sprintf(`**Personal Finance (%s)**

- Maximum financing limit: %s QAR
- Debt-to-salary ratio: ≤ %.0f%%
- %s

**Required Documents:**
- Recent salary certificate
- ID + Passport
- Bank statement (3 months)
- Security cheques
- National address proof`,
		facts.Nationality, formatQAR(maxFinance), dbRatio*100, guarantorText)
}

// formatQAR renders an amount with thousands separators (2000000 → 2,000,000).
func formatQAR(amount int) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

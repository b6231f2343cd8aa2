package catalog

// Default prompt templates. Data is an Input; helpers: json, join.

const analyzeResumeTemplate = `Analyze the following resume text and extract structured information.
Be thorough. If a section is missing, use an empty string or an empty list.

Resume Text:
-----
{{.ResumeText}}
-----

Return ONLY a single JSON object with exactly this structure, with no code fences and no commentary:
{
  "name": "string",
  "email": "string",
  "phone": "string",
  "summary": "string",
  "skills": ["list", "of", "skills"],
  "experience": ["list of detailed work experience entries"],
  "education": ["list of education entries"],
  "certifications": ["list of certifications, if any"],
  "projects": ["list of projects, if any"]
}`

const scoreATSTemplate = `Act as an expert Applicant Tracking System (ATS). Analyze the resume against the job description.

Resume:
-----
{{.ResumeText}}
-----

Job Description:
-----
{{.JobDescription}}
-----

Return ONLY a single JSON object with exactly this structure, with no code fences and no commentary:
{
  "ats_score": number between 0 and 100,
  "keyword_match_percentage": number between 0 and 100,
  "missing_critical_keywords": ["important keywords the resume lacks"],
  "strengths": ["what the resume does well"],
  "improvement_areas": ["specific areas to improve"],
  "formatting_score": number between 0 and 100,
  "content_relevance_score": number between 0 and 100
}`

const optimizeForJobTemplate = `Act as a professional resume writer. Optimize the resume data for the given job description.
Only suggest keywords the candidate can credibly claim from the resume data.

Current Resume Data:
{{json .Record}}

Job Description:
-----
{{.JobDescription}}
-----

Return ONLY a single JSON object with exactly this structure, with no code fences and no commentary:
{
  "optimized_summary": "an enhanced professional summary tailored to the job",
  "missing_keywords": ["critical keywords to add to the skills section"],
  "improvement_suggestions": ["overall improvement suggestions"]
}`

const generateQuestionsTemplate = `Act as a hiring manager. Based on the job description and the candidate's resume, generate 10 to 15 tailored interview questions.
Categorize each question as "Technical", "Behavioral" or "Situational".

Job Description:
-----
{{.JobDescription}}
-----

Candidate Resume:
{{json .Record}}

Return ONLY a JSON array, with no code fences and no commentary, where each element has this structure:
{
  "question": "the full text of the question",
  "category": "Technical, Behavioral or Situational",
  "tips": "a brief tip on how to answer well"
}`

const evaluateAnswerTemplate = `Act as a professional career coach. Evaluate the following interview answer in the context of the job description.

Job Description Context:
-----
{{.JobDescription}}
-----

Interview Question: "{{.Question}}"
Candidate's Answer: "{{.Answer}}"

Reply ONLY with concise, constructive Markdown feedback using exactly these headings, with no commentary before or after them:
## Overall Score
(a score out of 10)
## What Went Well
(two specific strengths)
## Areas for Improvement
(two specific, actionable suggestions)
## Stronger Example Answer
(the candidate's answer rewritten to be more impactful)`

const recommendCoursesTemplate = `Act as a career development advisor. Based on the candidate's current skills and the job requirements,
recommend 3 to 5 specific online courses that bridge the skill gaps.

Current Skills: {{join .Skills ", "}}

Job Requirements:
-----
{{.JobDescription}}
-----

Return ONLY a JSON array, with no code fences and no commentary, where each element has this structure:
{
  "course_name": "course title",
  "provider": "platform, e.g. Coursera or Udemy",
  "reason": "why this course is recommended",
  "skill_gap": "the specific skill this course addresses",
  "duration": "estimated time to complete"
}`

const generateCoverLetterTemplate = `Based on the resume data and job description below, write a professional and compelling cover letter.
Personalize it to the candidate's experience and address the requirements of the job directly.
Keep a confident, professional tone. The letter must not exceed 400 words.
Reply ONLY with the letter text, with no preamble and no commentary.

Resume Data:
{{json .Record}}

Job Description:
-----
{{.JobDescription}}
-----`

const generateLinkedInSummaryTemplate = `Based on the resume data below, write an engaging LinkedIn "About" section in the first person.
Be professional yet approachable and open with a strong hook.
Highlight key skills and quantifiable achievements, and end with a call to action.
Reply ONLY with the summary text, with no preamble and no commentary.

Resume Data:
{{json .Record}}`

package catalog

// Output schemas for structured tasks. They describe what the prompt asks
// for and are only used to report drift; decoding stays lenient.

const resumeRecordSchema = `{
  "type": "object",
  "required": ["name", "summary", "skills", "experience"],
  "properties": {
    "name": {"type": "string"},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "summary": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "experience": {"type": "array", "items": {"type": "string"}},
    "education": {"type": "array", "items": {"type": "string"}},
    "certifications": {"type": "array", "items": {"type": "string"}},
    "projects": {"type": "array", "items": {"type": "string"}}
  }
}`

const atsResultSchema = `{
  "type": "object",
  "required": ["ats_score", "missing_critical_keywords"],
  "properties": {
    "ats_score": {"type": ["number", "string"], "minimum": 0, "maximum": 100},
    "keyword_match_percentage": {"type": ["number", "string"], "minimum": 0, "maximum": 100},
    "missing_critical_keywords": {"type": "array", "items": {"type": "string"}},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvement_areas": {"type": "array", "items": {"type": "string"}},
    "formatting_score": {"type": ["number", "string"], "minimum": 0, "maximum": 100},
    "content_relevance_score": {"type": ["number", "string"], "minimum": 0, "maximum": 100}
  }
}`

const optimizationSchema = `{
  "type": "object",
  "required": ["optimized_summary", "missing_keywords"],
  "properties": {
    "optimized_summary": {"type": "string"},
    "missing_keywords": {"type": "array", "items": {"type": "string"}},
    "improvement_suggestions": {"type": "array", "items": {"type": "string"}}
  }
}`

const questionsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question"],
    "properties": {
      "question": {"type": "string"},
      "category": {"enum": ["General", "Technical", "Behavioral", "Situational"]},
      "tips": {"type": "string"}
    }
  }
}`

const coursesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["course_name"],
    "properties": {
      "course_name": {"type": "string"},
      "provider": {"type": "string"},
      "reason": {"type": "string"},
      "skill_gap": {"type": "string"},
      "duration": {"type": "string"}
    }
  }
}`
